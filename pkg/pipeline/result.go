package pipeline

import (
	"fmt"
	"time"

	"github.com/dealgraph/dealgraph/pkg/confidence"
	"github.com/dealgraph/dealgraph/pkg/events"
)

// ScoredEvent pairs a canonical event with its batch-level confidence
// breakdown. Event.ConfidenceScore carries the resolution-time score; Score
// is the full multi-factor assessment against the whole batch.
type ScoredEvent struct {
	Event     *events.CanonicalEvent
	Score     float64
	Breakdown *confidence.Breakdown
}

// Result represents the outcome of a pipeline run.
type Result struct {
	// Success indicates the run completed without group failures
	Success bool

	// Events are the resolved, scored canonical events
	Events []ScoredEvent

	// Errors contains per-group failures; the rest of the batch still runs
	Errors []error

	// Warnings contains non-critical issues
	Warnings []string

	// Metadata about the run
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the pipeline run.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics about the run
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the pipeline run.
type ResultStatistics struct {
	CandidatesExtracted int
	GroupsFormed        int
	EventsResolved      int
	ConflictsResolved   int

	TotalTimeMs int64
}

// IsSuccess returns true if the run completed with no errors.
func (r *Result) IsSuccess() bool {
	return r.Success && len(r.Errors) == 0
}

// HasErrors returns true if there were errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there were warnings.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if !r.Success {
		return fmt.Sprintf("Pipeline run failed with %d errors", len(r.Errors))
	}
	return fmt.Sprintf("Resolved %d events from %d candidates in %d groups (%d conflicts resolved)",
		len(r.Events),
		r.Metadata.Stats.CandidatesExtracted,
		r.Metadata.Stats.GroupsFormed,
		r.Metadata.Stats.ConflictsResolved)
}

// Report generates a detailed report of the run.
func (r *Result) Report() string {
	report := fmt.Sprintf(`
Pipeline Report
===============
Status: %s
Duration: %s

Statistics:
-----------
Candidates Extracted: %d
Groups Formed: %d
Events Resolved: %d
Conflicts Resolved: %d
Total Time: %dms

`, r.statusString(),
		r.Metadata.Duration,
		r.Metadata.Stats.CandidatesExtracted,
		r.Metadata.Stats.GroupsFormed,
		r.Metadata.Stats.EventsResolved,
		r.Metadata.Stats.ConflictsResolved,
		r.Metadata.Stats.TotalTimeMs)

	if len(r.Events) > 0 {
		report += "Events:\n-------\n"
		for _, scored := range r.Events {
			report += fmt.Sprintf("%s  %s\n", scored.Event.Summary(), formatScore(scored.Score))
		}
		report += "\n"
	}

	if r.HasErrors() {
		report += fmt.Sprintf("Errors (%d):\n------------\n", len(r.Errors))
		for i, err := range r.Errors {
			report += fmt.Sprintf("%d. %v\n", i+1, err)
		}
		report += "\n"
	}

	if r.HasWarnings() {
		report += fmt.Sprintf("Warnings (%d):\n--------------\n", len(r.Warnings))
		for i, warning := range r.Warnings {
			report += fmt.Sprintf("%d. %s\n", i+1, warning)
		}
		report += "\n"
	}

	return report
}

func (r *Result) statusString() string {
	if !r.Success {
		return "❌ Failed"
	}
	if r.HasWarnings() {
		return "⚠️  Success with Warnings"
	}
	return "✅ Success"
}

func formatScore(score float64) string {
	return fmt.Sprintf("[confidence %.2f]", score)
}

// ResultBuilder helps construct Result objects.
type ResultBuilder struct {
	result *Result
	stats  ResultStatistics
}

// NewResultBuilder creates a new ResultBuilder.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{
		result: &Result{
			Success:  true,
			Events:   []ScoredEvent{},
			Errors:   []error{},
			Warnings: []string{},
			Metadata: ResultMetadata{
				StartTime: time.Now(),
			},
		},
	}
}

// WithStartTime overrides the builder's start time.
func (b *ResultBuilder) WithStartTime(start time.Time) *ResultBuilder {
	b.result.Metadata.StartTime = start
	return b
}

// WithEvent appends a scored event.
func (b *ResultBuilder) WithEvent(scored ScoredEvent) *ResultBuilder {
	b.result.Events = append(b.result.Events, scored)
	return b
}

// WithError adds an error.
func (b *ResultBuilder) WithError(err error) *ResultBuilder {
	if err != nil {
		b.result.Success = false
		b.result.Errors = append(b.result.Errors, err)
	}
	return b
}

// WithWarning adds a warning.
func (b *ResultBuilder) WithWarning(warning string) *ResultBuilder {
	b.result.Warnings = append(b.result.Warnings, warning)
	return b
}

// WithStatistics sets the result statistics.
func (b *ResultBuilder) WithStatistics(stats ResultStatistics) *ResultBuilder {
	b.stats = stats
	return b
}

// Build finalizes and returns the Result.
func (b *ResultBuilder) Build() *Result {
	b.result.Metadata.EndTime = time.Now()
	b.result.Metadata.Duration = b.result.Metadata.EndTime.Sub(b.result.Metadata.StartTime)
	b.stats.EventsResolved = len(b.result.Events)
	b.stats.TotalTimeMs = b.result.Metadata.Duration.Milliseconds()
	b.result.Metadata.Stats = b.stats
	return b.result
}
