package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/gig-hunter/internal/api"
	"github.com/spigell/gig-hunter/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the hunts on their schedule and serve the results over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		runSchedule(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringSliceP("platform", "p", nil, "platforms to hunt on (default is every enabled platform)")
	scheduleCmd.Flags().Bool("run-on-start", false, "hunt once right after start")
	scheduleCmd.Flags().String("listen", "", "api listen address, empty string from config disables the api")
	scheduleCmd.Flags().Bool("no-api", false, "do not serve the api")

	viper.BindPFlag("schedule.run_on_start", scheduleCmd.Flags().Lookup("run-on-start"))
	viper.BindPFlag("api.listen", scheduleCmd.Flags().Lookup("listen"))
}

func runSchedule(cmd *cobra.Command) {
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

	schedule := config.Schedule
	if schedule.Concurrency <= 0 {
		schedule.Concurrency = config.Concurrency
	}

	sched := scheduler.New(schedule, runner, skills, logger)
	if err := sched.Add(ctx, adapters); err != nil {
		logger.Fatal("scheduling hunts", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)

	noAPI, _ := cmd.Flags().GetBool("no-api")
	if !noAPI && config.API.Listen != "" {
		server := api.NewServer(a.opportunities, a.logs, a.registry, logger)
		g.Go(func() error {
			return server.Run(ctx, config.API.Listen)
		})
	}

	sched.Start(ctx)
	logger.Info("scheduler started", zap.Int("platforms", len(adapters)))

	g.Go(func() error {
		<-ctx.Done()
		sched.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
	logger.Info("scheduler stopped")
}
