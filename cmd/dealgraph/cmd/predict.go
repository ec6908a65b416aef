package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealgraph/dealgraph/internal/store"
)

var (
	predictEntities string
	predictMax      int
	predictJSON     bool
	predictNoSave   bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Infer likely company relationships",
	Long: `Predict reads a company snapshot from a JSON file (--entities), seeds
the relationship graph with previously resolved events from the snapshot
database, and ranks entity pairs whose combined industry, market-cap, and
topology signals clear the prediction threshold.`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictEntities, "entities", "e", "", "JSON file of entities (- for stdin)")
	predictCmd.Flags().IntVarP(&predictMax, "max", "n", 0, "maximum predictions (0 uses configured cap)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "emit edges as JSON")
	predictCmd.Flags().BoolVar(&predictNoSave, "no-save", false, "skip snapshot persistence")
	_ = predictCmd.MarkFlagRequired("entities") // flag registered above
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cobraCmd *cobra.Command, _ []string) error {
	ctx := cobraCmd.Context()

	entities, err := readEntities(predictEntities)
	if err != nil {
		return exitError(err)
	}

	db, err := store.Open(settings.DatabasePath)
	if err != nil {
		return exitError(err)
	}
	defer db.Close()

	resolved, err := db.Events(ctx, 0)
	if err != nil {
		return exitError(err)
	}

	p, err := buildPipeline()
	if err != nil {
		return exitError(err)
	}

	maxPredictions := predictMax
	if maxPredictions <= 0 {
		maxPredictions = settings.MaxPredictions
	}
	edges := p.Predict(ctx, entities, resolved, maxPredictions)

	if !predictNoSave {
		if err := db.SaveEdges(ctx, edges); err != nil {
			return exitError(err)
		}
	}

	if predictJSON {
		return printJSON(edges)
	}
	if len(edges) == 0 {
		cobraCmd.Println("No relationships predicted above threshold.")
		return nil
	}
	for _, edge := range edges {
		cobraCmd.Println(fmt.Sprintf("%s → %s  %s [%.2f]", edge.SourceID, edge.TargetID, edge.Type, edge.ConfidenceScore))
		for _, reason := range edge.Reasoning {
			cobraCmd.Println("  - " + reason)
		}
	}
	return nil
}
