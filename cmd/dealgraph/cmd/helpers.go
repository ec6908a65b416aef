package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dealgraph/dealgraph/pkg/confidence"
	"github.com/dealgraph/dealgraph/pkg/errors"
	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/group"
	"github.com/dealgraph/dealgraph/pkg/linkpredict"
	"github.com/dealgraph/dealgraph/pkg/pipeline"
	"github.com/dealgraph/dealgraph/pkg/reliability"
	"github.com/dealgraph/dealgraph/pkg/resolve"
)

// buildPipeline assembles a pipeline from the loaded settings.
func buildPipeline() (*pipeline.Pipeline, error) {
	table := reliability.New()
	if settings.ReliabilityTable != "" {
		loaded, err := reliability.LoadFile(settings.ReliabilityTable)
		if err != nil {
			return nil, err
		}
		table = loaded
	}

	return pipeline.New(
		pipeline.WithGrouper(group.New(group.WithMaxDateGap(settings.MaxDateGap))),
		pipeline.WithResolver(resolve.New(
			resolve.WithTable(table),
			resolve.WithFuzzyThreshold(settings.FuzzyMatchThreshold),
			resolve.WithValueTolerance(settings.ValueSpreadTolerance),
		)),
		pipeline.WithScorer(confidence.New(confidence.WithTable(table))),
		pipeline.WithEngine(linkpredict.New(linkpredict.WithThreshold(settings.PredictionThreshold))),
	), nil
}

// readCandidates loads a JSON array of candidate events from a file, or
// stdin when path is "-".
func readCandidates(path string) ([]events.CandidateEvent, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var candidates []events.CandidateEvent
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, errors.NewParseError("candidates", path, err.Error())
	}
	return candidates, nil
}

// readEntities loads a JSON array of entities from a file, or stdin when
// path is "-".
func readEntities(path string) ([]events.Entity, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var entities []events.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, errors.NewParseError("entities", path, err.Error())
	}
	return entities, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.WrapIO("read", "stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// exitError prints an error to stderr in a consistent format.
func exitError(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
