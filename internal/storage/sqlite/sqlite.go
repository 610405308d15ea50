// Package sqlite stores opportunities and hunt logs in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS opportunities (
	url             TEXT PRIMARY KEY,
	platform        TEXT NOT NULL,
	external_id     TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	required_skills TEXT NOT NULL DEFAULT '[]',
	pay_min         REAL,
	pay_max         REAL,
	pay_type        TEXT NOT NULL DEFAULT '',
	match_score     REAL NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT 'new',
	client_info     TEXT,
	metadata        TEXT,
	discovered_at   TEXT NOT NULL,
	expires_at      TEXT
);
CREATE INDEX IF NOT EXISTS opportunities_score_idx ON opportunities (match_score DESC, discovered_at DESC);

CREATE TABLE IF NOT EXISTS hunt_logs (
	id                    TEXT PRIMARY KEY,
	hunt_name             TEXT NOT NULL,
	platform              TEXT NOT NULL,
	started_at            TEXT NOT NULL,
	completed_at          TEXT NOT NULL,
	opportunities_found   INTEGER NOT NULL DEFAULT 0,
	opportunities_matched INTEGER NOT NULL DEFAULT 0,
	status                TEXT NOT NULL,
	error_message         TEXT,
	execution_time_ms     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS hunt_logs_started_idx ON hunt_logs (started_at DESC);
`

const opportunityColumns = `url, platform, external_id, title, description, required_skills,
	pay_min, pay_max, pay_type, match_score, status, client_info, metadata, discovered_at, expires_at`

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

// Open creates the database file if needed and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Upsert(ctx context.Context, o *opportunity.Opportunity) error {
	if o == nil || o.URL == "" {
		return storage.ErrInvalidOpportunity
	}

	skills := o.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	clientJSON, err := nullJSON(o.ClientInfo)
	if err != nil {
		return err
	}
	metaJSON, err := nullJSON(o.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO opportunities (`+opportunityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url)
		DO UPDATE SET match_score = excluded.match_score, status = excluded.status`,
		o.URL, o.Platform, o.ExternalID, o.Title, o.Description, string(skillsJSON),
		o.PayMin, o.PayMax, string(o.PayType), o.MatchScore, string(o.Status),
		clientJSON, metaJSON, formatTime(o.DiscoveredAt), formatTimePtr(o.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("upsert opportunity: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, f storage.Filter) ([]*opportunity.Opportunity, error) {
	where, args := f.Where(func(int) string { return "?" })
	query := `SELECT ` + opportunityColumns + ` FROM opportunities` + where +
		` ORDER BY match_score DESC, discovered_at DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	var items []*opportunity.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func scanOpportunity(rows *sql.Rows) (*opportunity.Opportunity, error) {
	var (
		o                       opportunity.Opportunity
		skills, payType, status string
		clientInfo, metadata    sql.NullString
		discovered              string
		expires                 sql.NullString
	)
	err := rows.Scan(
		&o.URL, &o.Platform, &o.ExternalID, &o.Title, &o.Description, &skills,
		&o.PayMin, &o.PayMax, &payType, &o.MatchScore, &status,
		&clientInfo, &metadata, &discovered, &expires,
	)
	if err != nil {
		return nil, err
	}

	o.PayType = opportunity.PayType(payType)
	o.Status = opportunity.Status(status)

	if err := json.Unmarshal([]byte(skills), &o.RequiredSkills); err != nil {
		return nil, fmt.Errorf("required_skills: %w", err)
	}
	if clientInfo.Valid {
		if err := json.Unmarshal([]byte(clientInfo.String), &o.ClientInfo); err != nil {
			return nil, fmt.Errorf("client_info: %w", err)
		}
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &o.Metadata); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
	}

	if o.DiscoveredAt, err = time.Parse(timeLayout, discovered); err != nil {
		return nil, err
	}
	if expires.Valid {
		t, err := time.Parse(timeLayout, expires.String)
		if err != nil {
			return nil, err
		}
		o.ExpiresAt = &t
	}

	return &o, nil
}

func (s *Store) Append(ctx context.Context, l *opportunity.HuntLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hunt_logs (id, hunt_name, platform, started_at, completed_at,
			opportunities_found, opportunities_matched, status, error_message, execution_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.HuntName, l.Platform, formatTime(l.StartedAt), formatTime(l.CompletedAt),
		l.OpportunitiesFound, l.OpportunitiesMatched, string(l.Status), l.ErrorMessage, l.ExecutionTimeMS,
	)
	if err != nil {
		return fmt.Errorf("append hunt log: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*opportunity.HuntLog, error) {
	query := `SELECT id, hunt_name, platform, started_at, completed_at,
		opportunities_found, opportunities_matched, status, error_message, execution_time_ms
		FROM hunt_logs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hunt logs: %w", err)
	}
	defer rows.Close()

	var logs []*opportunity.HuntLog
	for rows.Next() {
		var (
			l                  opportunity.HuntLog
			started, completed string
			status             string
			message            sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.HuntName, &l.Platform, &started, &completed,
			&l.OpportunitiesFound, &l.OpportunitiesMatched, &status, &message, &l.ExecutionTimeMS); err != nil {
			return nil, fmt.Errorf("scan hunt log: %w", err)
		}

		l.Status = opportunity.HuntStatus(status)
		if message.Valid {
			l.ErrorMessage = &message.String
		}
		if l.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, err
		}
		if l.CompletedAt, err = time.Parse(timeLayout, completed); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return string(data), nil
}

