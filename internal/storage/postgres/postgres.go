// Package postgres stores opportunities and hunt logs in PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/storage"
)

//go:embed schema.sql
var schema string

const opportunityColumns = `url, platform, external_id, title, description, required_skills,
	pay_min, pay_max, pay_type, match_score, status, client_info, metadata, discovered_at, expires_at`

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool, checks it and applies the schema.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Upsert inserts the opportunity or, for a known URL, refreshes its score and status.
func (s *Store) Upsert(ctx context.Context, o *opportunity.Opportunity) error {
	if o == nil || o.URL == "" {
		return storage.ErrInvalidOpportunity
	}

	skills := o.RequiredSkills
	if skills == nil {
		skills = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO opportunities (`+opportunityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (url)
		DO UPDATE SET match_score = EXCLUDED.match_score, status = EXCLUDED.status`,
		o.URL, o.Platform, o.ExternalID, o.Title, o.Description, skills,
		o.PayMin, o.PayMax, string(o.PayType), o.MatchScore, string(o.Status),
		o.ClientInfo, o.Metadata, o.DiscoveredAt, o.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert opportunity: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, f storage.Filter) ([]*opportunity.Opportunity, error) {
	where, args := f.Where(func(n int) string { return "$" + strconv.Itoa(n) })
	query := `SELECT ` + opportunityColumns + ` FROM opportunities` + where +
		` ORDER BY match_score DESC, discovered_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanOpportunity)
	if err != nil {
		return nil, fmt.Errorf("scan opportunities: %w", err)
	}
	return items, nil
}

func scanOpportunity(row pgx.CollectableRow) (*opportunity.Opportunity, error) {
	var (
		o               opportunity.Opportunity
		payType, status string
	)
	err := row.Scan(
		&o.URL, &o.Platform, &o.ExternalID, &o.Title, &o.Description, &o.RequiredSkills,
		&o.PayMin, &o.PayMax, &payType, &o.MatchScore, &status,
		&o.ClientInfo, &o.Metadata, &o.DiscoveredAt, &o.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	o.PayType = opportunity.PayType(payType)
	o.Status = opportunity.Status(status)
	o.DiscoveredAt = o.DiscoveredAt.UTC()
	return &o, nil
}

func (s *Store) Append(ctx context.Context, l *opportunity.HuntLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hunt_logs (id, hunt_name, platform, started_at, completed_at,
			opportunities_found, opportunities_matched, status, error_message, execution_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.HuntName, l.Platform, l.StartedAt, l.CompletedAt,
		l.OpportunitiesFound, l.OpportunitiesMatched, string(l.Status), l.ErrorMessage, l.ExecutionTimeMS,
	)
	if err != nil {
		return fmt.Errorf("append hunt log: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*opportunity.HuntLog, error) {
	query := `SELECT id::text, hunt_name, platform, started_at, completed_at,
		opportunities_found, opportunities_matched, status, error_message, execution_time_ms
		FROM hunt_logs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hunt logs: %w", err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*opportunity.HuntLog, error) {
		var (
			l      opportunity.HuntLog
			status string
		)
		err := row.Scan(&l.ID, &l.HuntName, &l.Platform, &l.StartedAt, &l.CompletedAt,
			&l.OpportunitiesFound, &l.OpportunitiesMatched, &status, &l.ErrorMessage, &l.ExecutionTimeMS)
		l.Status = opportunity.HuntStatus(status)
		return &l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan hunt logs: %w", err)
	}
	return logs, nil
}
