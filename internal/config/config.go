// Package config loads runtime settings for the dealgraph CLI from config
// files and environment variables via viper. Core packages take their
// settings through functional options; this package only exists on the
// caller side.
package config

import (
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dealgraph/dealgraph/pkg/errors"
)

// Defaults applied when neither config file nor environment provides a value.
const (
	DefaultDatabasePath  = "dealgraph.db"
	DefaultMaxDateGap    = 30 * 24 * time.Hour
	DefaultFuzzyMatch    = 0.8
	DefaultValueSpread   = 1.1
	DefaultPrediction    = 0.6
	DefaultMaxPredicted  = 20
	DefaultWatchSchedule = "@every 1h"
)

// Settings holds everything the CLI needs to assemble a pipeline.
type Settings struct {
	// ReliabilityTable is the path to a YAML source-weight table. Empty
	// means the built-in defaults.
	ReliabilityTable string `mapstructure:"reliability_table"`

	// DatabasePath is the sqlite snapshot file.
	DatabasePath string `mapstructure:"database_path"`

	// Feeds are press-release / news feed URLs to ingest.
	Feeds []string `mapstructure:"feeds"`

	// MaxDateGap bounds the grouping window.
	MaxDateGap time.Duration `mapstructure:"max_date_gap"`

	// FuzzyMatchThreshold is the name-similarity cutoff for clustering
	// company spellings.
	FuzzyMatchThreshold float64 `mapstructure:"fuzzy_match_threshold"`

	// ValueSpreadTolerance is the max/min ratio under which deal values
	// are averaged instead of arbitrated.
	ValueSpreadTolerance float64 `mapstructure:"value_spread_tolerance"`

	// PredictionThreshold is the minimum score for an inferred edge.
	PredictionThreshold float64 `mapstructure:"prediction_threshold"`

	// MaxPredictions caps the edges returned per inference run.
	MaxPredictions int `mapstructure:"max_predictions"`

	// WatchSchedule is a cron expression for the watch command.
	WatchSchedule string `mapstructure:"watch_schedule"`
}

// Load reads settings from the given config file (or the default search
// path when empty), overlays environment variables prefixed DEALGRAPH_, and
// fills in defaults. A missing config file is not an error; a malformed one
// is.
func Load(configFile string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("max_date_gap", DefaultMaxDateGap)
	v.SetDefault("fuzzy_match_threshold", DefaultFuzzyMatch)
	v.SetDefault("value_spread_tolerance", DefaultValueSpread)
	v.SetDefault("prediction_threshold", DefaultPrediction)
	v.SetDefault("max_predictions", DefaultMaxPredicted)
	v.SetDefault("watch_schedule", DefaultWatchSchedule)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".dealgraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("DEALGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", "failed to read", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, errors.NewConfigError("config file", "failed to unmarshal", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate rejects out-of-range thresholds before they reach the pipeline.
func (s *Settings) Validate() error {
	if s.FuzzyMatchThreshold < 0 || s.FuzzyMatchThreshold > 1 {
		return errors.NewValidationError("fuzzy_match_threshold", s.FuzzyMatchThreshold, "must be in [0, 1]")
	}
	if s.ValueSpreadTolerance < 1 {
		return errors.NewValidationError("value_spread_tolerance", s.ValueSpreadTolerance, "must be >= 1")
	}
	if s.PredictionThreshold < 0 || s.PredictionThreshold > 1 {
		return errors.NewValidationError("prediction_threshold", s.PredictionThreshold, "must be in [0, 1]")
	}
	if s.MaxDateGap < 0 {
		return errors.NewValidationError("max_date_gap", s.MaxDateGap, "must not be negative")
	}
	if s.MaxPredictions < 0 {
		return errors.NewValidationError("max_predictions", s.MaxPredictions, "must not be negative")
	}
	return nil
}
