package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/gnbintax/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gnbintax"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "gnbintax"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gnbintax", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "gnbintax", "config.yaml"),
		},
		{
			msg: "baseline store",
			fn:  config.StoreFilePath,
			res: filepath.Join(tempHome, ".cache", "gnbintax", "baseline.sqlite"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		assert.Equal(t, config.DefaultRanks(), cfg.Ranks)

		// Consensus defaults
		assert.Equal(t, float64(80), cfg.Consensus.Threshold)
		assert.Equal(t, "full", cfg.Consensus.Method)
		assert.False(t, cfg.Consensus.ExcludeMissingData)

		// Database defaults
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "postgres", cfg.Database.Password)
		assert.Equal(t, "gnbintax", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 50_000, cfg.Database.BatchSize)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestDefaultRanks(t *testing.T) {
	ranks := config.DefaultRanks()
	assert.Equal(t, []string{
		"kingdom", "phylum", "class", "order",
		"family", "genus", "species",
	}, ranks)

	// mutations of the returned slice must not leak into later calls
	ranks[0] = "domain"
	assert.Equal(t, "kingdom", config.DefaultRanks()[0])
}

func TestRankIndex(t *testing.T) {
	cfg := config.New()
	assert.Equal(t, 0, cfg.RankIndex("kingdom"))
	assert.Equal(t, 6, cfg.RankIndex("species"))
	assert.Equal(t, -1, cfg.RankIndex("tribe"))
}

func TestUpdate(t *testing.T) {
	t.Run("applies valid options", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptThreshold(90),
			config.OptMethod("rank"),
			config.OptExcludeMissingData(true),
			config.OptDatabaseHost("db.example.org"),
			config.OptJobsNumber(4),
		})

		assert.Equal(t, float64(90), cfg.Consensus.Threshold)
		assert.Equal(t, "rank", cfg.Consensus.Method)
		assert.True(t, cfg.Consensus.ExcludeMissingData)
		assert.Equal(t, "db.example.org", cfg.Database.Host)
		assert.Equal(t, 4, cfg.JobsNumber)
	})

	t.Run("rejects invalid values, keeps defaults", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptThreshold(0),
			config.OptThreshold(101),
			config.OptMethod("majority"),
			config.OptLogFormat("xml"),
			config.OptJobsNumber(-1),
		})

		assert.Equal(t, float64(80), cfg.Consensus.Threshold)
		assert.Equal(t, "full", cfg.Consensus.Method)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})

	t.Run("normalizes ranks", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptRanks([]string{" Kingdom", "Phylum ", "class"}),
		})
		assert.Equal(t, []string{"kingdom", "phylum", "class"}, cfg.Ranks)
	})

	t.Run("rejects duplicate ranks", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptRanks([]string{"kingdom", "kingdom"}),
		})
		assert.Equal(t, config.DefaultRanks(), cfg.Ranks)
	})
}

func TestToOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptThreshold(95),
		config.OptMethod("rank"),
		config.OptDatabasePort(5433),
		config.OptLogLevel("debug"),
	})

	clone := config.New()
	clone.Update(cfg.ToOptions())

	assert.Equal(t, cfg.Consensus, clone.Consensus)
	assert.Equal(t, cfg.Database, clone.Database)
	assert.Equal(t, cfg.Log, clone.Log)
	assert.Equal(t, cfg.Ranks, clone.Ranks)
	assert.Equal(t, cfg.JobsNumber, clone.JobsNumber)
}
