package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealgraph/dealgraph/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file anywhere near

	settings, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDatabasePath, settings.DatabasePath)
	assert.Equal(t, config.DefaultMaxDateGap, settings.MaxDateGap)
	assert.Equal(t, config.DefaultFuzzyMatch, settings.FuzzyMatchThreshold)
	assert.Equal(t, config.DefaultValueSpread, settings.ValueSpreadTolerance)
	assert.Equal(t, config.DefaultPrediction, settings.PredictionThreshold)
	assert.Equal(t, config.DefaultWatchSchedule, settings.WatchSchedule)
	assert.Empty(t, settings.Feeds)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_path: /tmp/test.db
fuzzy_match_threshold: 0.9
max_date_gap: 168h
feeds:
  - https://example.com/feed.xml
  - https://other.example/rss
`), 0o644))

	settings, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", settings.DatabasePath)
	assert.Equal(t, 0.9, settings.FuzzyMatchThreshold)
	assert.Equal(t, 7*24*time.Hour, settings.MaxDateGap)
	assert.Len(t, settings.Feeds, 2)
	// Unset keys keep defaults.
	assert.Equal(t, config.DefaultPrediction, settings.PredictionThreshold)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidThresholds(t *testing.T) {
	tests := []string{
		"fuzzy_match_threshold: 1.5",
		"value_spread_tolerance: 0.5",
		"prediction_threshold: -0.1",
		"max_predictions: -3",
	}
	for _, body := range tests {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		_, err := config.Load(path)
		assert.Error(t, err, "config %q", body)
	}
}

func TestEnvironmentOverlay(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEALGRAPH_DATABASE_PATH", "/var/lib/dealgraph/env.db")

	settings, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/dealgraph/env.db", settings.DatabasePath)
}
