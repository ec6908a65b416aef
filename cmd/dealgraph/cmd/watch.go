package cmd

import (
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/dealgraph/dealgraph/internal/ingest"
	"github.com/dealgraph/dealgraph/internal/store"
	"github.com/dealgraph/dealgraph/pkg/errors"
	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/logging"
)

var watchSchedule string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-process configured feeds on a schedule",
	Long: `Watch runs the pipeline over the configured feeds on a cron schedule,
persisting each run's canonical events to the snapshot database. It runs
until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule (overrides configured watch_schedule)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cobraCmd *cobra.Command, _ []string) error {
	ctx := cobraCmd.Context()
	log := logging.Default()

	if len(settings.Feeds) == 0 {
		return exitError(errors.NewConfigError("feeds", "watch requires at least one configured feed", nil))
	}

	schedule := settings.WatchSchedule
	if watchSchedule != "" {
		schedule = watchSchedule
	}

	p, err := buildPipeline()
	if err != nil {
		return exitError(err)
	}
	db, err := store.Open(settings.DatabasePath)
	if err != nil {
		return exitError(err)
	}
	defer db.Close()

	fetcher := ingest.New()
	run := func() {
		docs, errs := fetcher.FetchAll(ctx, settings.Feeds)
		for _, err := range errs {
			log.Warn().Err(err).Msg("Skipping feed")
		}

		result, err := p.Process(ctx, docs, nil)
		if err != nil {
			log.Error().Err(err).Msg("Pipeline run failed")
			return
		}

		canonical := make([]events.CanonicalEvent, 0, len(result.Events))
		for _, scored := range result.Events {
			canonical = append(canonical, *scored.Event)
		}
		if _, err := db.SaveEvents(ctx, canonical); err != nil {
			log.Error().Err(err).Msg("Snapshot persistence failed")
			return
		}
		log.Info().Str("summary", result.Summary()).Msg("Watch run complete")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, run); err != nil {
		return exitError(errors.NewConfigError("watch_schedule", "invalid cron expression", err))
	}

	log.Info().Str("schedule", schedule).Int("feeds", len(settings.Feeds)).Msg("Watching feeds")
	run() // immediate first pass, then on schedule
	scheduler.Start()

	<-ctx.Done()
	cronCtx := scheduler.Stop()
	<-cronCtx.Done()
	log.Info().Msg("Watch stopped")
	return nil
}
