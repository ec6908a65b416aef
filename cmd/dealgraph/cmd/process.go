package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dealgraph/dealgraph/internal/ingest"
	"github.com/dealgraph/dealgraph/internal/store"
	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/logging"
	"github.com/dealgraph/dealgraph/pkg/pipeline"
)

var (
	processInput  string
	processFeeds  []string
	processJSON   bool
	processNoSave bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Reconcile candidate events into canonical events",
	Long: `Process runs the full pipeline: candidate events are read from a JSON
file (--input) and/or extracted from configured feeds, grouped by entity
similarity, resolved into canonical events, and confidence-scored.

Results are printed and, unless --no-save is given, persisted to the
snapshot database.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processInput, "input", "i", "", "JSON file of candidate events (- for stdin)")
	processCmd.Flags().StringSliceVar(&processFeeds, "feed", nil, "feed URL to ingest (repeatable; overrides configured feeds)")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "emit canonical events as JSON")
	processCmd.Flags().BoolVar(&processNoSave, "no-save", false, "skip snapshot persistence")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cobraCmd *cobra.Command, _ []string) error {
	ctx := cobraCmd.Context()
	log := logging.Default()

	var candidates []events.CandidateEvent
	if processInput != "" {
		loaded, err := readCandidates(processInput)
		if err != nil {
			return exitError(err)
		}
		candidates = loaded
	}

	feeds := settings.Feeds
	if len(processFeeds) > 0 {
		feeds = processFeeds
	}

	var docs []pipeline.RawDocument
	if len(feeds) > 0 {
		fetched, errs := ingest.New().FetchAll(ctx, feeds)
		for _, err := range errs {
			log.Warn().Err(err).Msg("Skipping feed")
		}
		docs = fetched
	}

	p, err := buildPipeline()
	if err != nil {
		return exitError(err)
	}

	result, err := p.Process(ctx, docs, candidates)
	if err != nil {
		return exitError(err)
	}

	if !processNoSave {
		db, err := store.Open(settings.DatabasePath)
		if err != nil {
			return exitError(err)
		}
		defer db.Close()

		canonical := make([]events.CanonicalEvent, 0, len(result.Events))
		for _, scored := range result.Events {
			canonical = append(canonical, *scored.Event)
		}
		saved, err := db.SaveEvents(ctx, canonical)
		if err != nil {
			return exitError(err)
		}
		log.Debug().Int("saved", saved).Str("path", settings.DatabasePath).Msg("Persisted snapshot")
	}

	if processJSON {
		return printJSON(result.Events)
	}
	cobraCmd.Println(result.Report())
	return nil
}
