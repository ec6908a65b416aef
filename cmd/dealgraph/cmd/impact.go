package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealgraph/dealgraph/internal/store"
)

var (
	impactEntities string
	impactJSON     bool
)

var impactCmd = &cobra.Command{
	Use:   "impact <source-id> <target-id>",
	Short: "Simulate the market impact of a hypothesized relationship",
	Long: `Impact scores a hypothetical relationship between two companies from
the entity snapshot and reports the likely fallout: companies with
overlapping network neighborhoods, the pair's market concentration within
its industries, and a coarse timeline.`,
	Args: cobra.ExactArgs(2),
	RunE: runImpact,
}

func init() {
	impactCmd.Flags().StringVarP(&impactEntities, "entities", "e", "", "JSON file of entities (- for stdin)")
	impactCmd.Flags().BoolVar(&impactJSON, "json", false, "emit the report as JSON")
	_ = impactCmd.MarkFlagRequired("entities") // flag registered above
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cobraCmd *cobra.Command, args []string) error {
	ctx := cobraCmd.Context()

	entities, err := readEntities(impactEntities)
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

	report, err := p.SimulateImpact(ctx, args[0], args[1], entities, resolved)
	if err != nil {
		return exitError(err)
	}

	if impactJSON {
		return printJSON(report)
	}

	rel := report.Relationship
	cobraCmd.Println(fmt.Sprintf("Relationship: %s → %s  %s [%.2f]", rel.SourceID, rel.TargetID, rel.Type, rel.ConfidenceScore))
	for _, reason := range rel.Reasoning {
		cobraCmd.Println("  - " + reason)
	}
	cobraCmd.Println(fmt.Sprintf("\nMarket concentration: %.2f", report.Market.MarketConcentration))
	cobraCmd.Println("Innovation impact: " + report.Market.InnovationImpact)
	if len(report.Market.AffectedCompanies) > 0 {
		cobraCmd.Println("\nAffected companies:")
		for _, company := range report.Market.AffectedCompanies {
			cobraCmd.Println(fmt.Sprintf("  %s (%s)  overlap %.2f", company.Name, company.Industry, company.Overlap))
		}
	}
	cobraCmd.Println("\nTimeline:")
	cobraCmd.Println("  Immediate:  " + report.Timeline.Immediate)
	cobraCmd.Println("  Short term: " + report.Timeline.ShortTerm)
	cobraCmd.Println("  Long term:  " + report.Timeline.LongTerm)
	return nil
}
