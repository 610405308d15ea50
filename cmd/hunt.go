package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/logger"
	"github.com/spigell/gig-hunter/internal/opportunity"
)

const (
	PromptExit                = "Exit"
	PromptReportByPlatform    = "Report by platform"
	PromptOpportunitiesToFile = "Dump opportunities to file"
	PromptAppendToExcludeFile = "Append all opportunities to exclude file"
)

var errExit = errors.New("exit requested")

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Run the hunts once and store the matched opportunities",
	Run: func(cmd *cobra.Command, _ []string) {
		runHunt(cmd)
	},
}

func init() {
	rootCmd.AddCommand(huntCmd)

	huntCmd.Flags().StringSliceP("platform", "p", nil, "platforms to hunt on (default is every enabled platform)")
	huntCmd.Flags().BoolP("interactive", "i", false, "ask what to do with the matched opportunities")
	huntCmd.Flags().StringP("exclude-file", "e", "", "special file with opportunities to exclude. Default is unset.")

	viper.BindPFlag("filters.exclude_file", huntCmd.Flags().Lookup("exclude-file"))
}

func runHunt(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, config := mustApplication(ctx, "")
	defer a.Close()
	logger := a.logger

	skills, err := a.skills()
	if err != nil {
		logger.Fatal("loading skill profile", zap.Error(err))
	}

	requested, _ := cmd.Flags().GetStringSlice("platform")
	adapters, err := a.adapters(requested)
	if err != nil {
		logger.Fatal("building platforms", zap.Error(err))
	}

	runner, err := a.runner()
	if err != nil {
		logger.Fatal("preparing hunt", zap.Error(err))
	}

	logger.Info("starting the hunt", zap.Int("platforms", len(adapters)), zap.Int("skills", len(skills)))

	results := runner.RunAll(ctx, adapters, skills, config.Concurrency)
	matched := collect(results, logger)

	if matched.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no opportunities matched"))
		return
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		return
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptReportByPlatform, PromptOpportunitiesToFile, PromptAppendToExcludeFile, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, matched); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// collect logs every hunt outcome and merges the matched opportunities.
func collect(results []hunt.Result, log *zap.Logger) *opportunity.Opportunities {
	matched := &opportunity.Opportunities{}
	for _, r := range results {
		l := logger.ForHunt(log, r.Hunt, r.Platform)
		if r.Err != nil {
			l.Error("hunt failed", zap.Error(r.Err))
			continue
		}
		l.Info("hunt finished", zap.Int("matched", r.Matched.Len()))
		matched.Append(r.Matched.Items...)
	}
	return matched
}

func handleAction(action string, logger *zap.Logger, config *Config, matched *opportunity.Opportunities) error {
	switch action {
	case PromptExit:
		return errExit
	case PromptReportByPlatform:
		pretty, _ := json.MarshalIndent(matched.ReportByPlatform(), "", "  ")
		logger.Info(string(pretty), zap.Int("opportunities count", matched.Len()))
		return nil
	case PromptOpportunitiesToFile:
		filename, err := matched.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		excludeFile := config.Filters.ExcludeFile
		if excludeFile == "" {
			logger.Warn("exclude file is not set", zap.String("hint", "use --exclude-file or filters.exclude_file"))
			return nil
		}

		excluded, err := opportunity.ExcludedFromFile(excludeFile)
		if err != nil {
			return err
		}
		excluded.Append(matched.ToExcluded(time.Now()))

		if err := excluded.ToFile(excludeFile); err != nil {
			return err
		}
		logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", matched.Len()))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// mustApplication reads the config and builds the shared application or exits.
// Logs go to output, stdout when empty.
func mustApplication(ctx context.Context, output string) (*application, *Config) {
	zl, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: output,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		zl.Fatal("config is required")
	}

	zl.Info("starting the gig-hunter", zap.String("version", version))

	a, err := newApplication(ctx, config, zl)
	if err != nil {
		zl.Fatal("preparing storage", zap.Error(err))
	}
	return a, config
}
