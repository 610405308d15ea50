package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/opportunity"
	"github.com/spigell/gig-hunter/internal/storage"
)

var opportunitiesCmd = &cobra.Command{
	Use:     "opportunities",
	Aliases: []string{"opps"},
	Short:   "Print stored opportunities as json, best match first",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a, _ := mustApplication(ctx, "stderr")
		defer a.Close()

		filter, err := opportunityFilter(cmd)
		if err != nil {
			a.logger.Fatal("parsing flags", zap.Error(err))
		}

		items, err := a.opportunities.Query(ctx, filter)
		if err != nil {
			a.logger.Fatal("querying opportunities", zap.Error(err))
		}

		if err := printJSON(items); err != nil {
			a.logger.Fatal("printing opportunities", zap.Error(err))
		}
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the most recent hunt logs as json",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a, _ := mustApplication(ctx, "stderr")
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		logs, err := a.logs.List(ctx, limit)
		if err != nil {
			a.logger.Fatal("listing hunt logs", zap.Error(err))
		}

		if failedOnly, _ := cmd.Flags().GetBool("failed"); failedOnly {
			logs = failedLogs(logs)
		}

		if err := printJSON(logs); err != nil {
			a.logger.Fatal("printing hunt logs", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(opportunitiesCmd, logsCmd)

	opportunitiesCmd.Flags().String("status", "", "only opportunities with this status")
	opportunitiesCmd.Flags().Float64("min-score", 0, "only opportunities scoring at least this much")
	opportunitiesCmd.Flags().String("platform", "", "only opportunities from this platform")
	opportunitiesCmd.Flags().Int("limit", 50, "maximum number of opportunities, 0 for all")

	logsCmd.Flags().Int("limit", 20, "maximum number of hunt logs, 0 for all")
	logsCmd.Flags().Bool("failed", false, "only failed or cancelled hunts")
}

func failedLogs(logs []*opportunity.HuntLog) []*opportunity.HuntLog {
	failed := make([]*opportunity.HuntLog, 0, len(logs))
	for _, l := range logs {
		if l.Failed() {
			failed = append(failed, l)
		}
	}
	return failed
}

func opportunityFilter(cmd *cobra.Command) (storage.Filter, error) {
	var f storage.Filter

	if raw, _ := cmd.Flags().GetString("status"); raw != "" {
		status, err := opportunity.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	if cmd.Flags().Changed("min-score") {
		score, _ := cmd.Flags().GetFloat64("min-score")
		f.MinScore = &score
	}
	f.Platform, _ = cmd.Flags().GetString("platform")
	f.Limit, _ = cmd.Flags().GetInt("limit")

	return f, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
