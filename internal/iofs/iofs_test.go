package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestEnsureDirs_CreatesDirectories verifies all required
// directories are created.
func TestEnsureDirs_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	// Verify config directory exists
	configDir := filepath.Join(tmpDir, ".config", "gnbintax")
	info, err := os.Stat(configDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Config directory should exist")

	// Verify cache directory exists
	cacheDir := filepath.Join(tmpDir, ".cache", "gnbintax")
	info, err = os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Cache directory should exist")

	// Verify log directory exists
	logDir := filepath.Join(tmpDir, ".local", "share", "gnbintax",
		"logs")
	info, err = os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Log directory should exist")
}

// TestEnsureDirs_Idempotent verifies multiple calls work.
func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureDirs(tmpDir)
	require.NoError(t, err)
}

// TestTouchDir_CreatesNewDirectory verifies new directory
// creation.
func TestTouchDir_CreatesNewDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	newDir := filepath.Join(tmpDir, "test", "subdir")

	err := touchDir(newDir)
	require.NoError(t, err)

	info, err := os.Stat(newDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestEnsureConfigFile_CreatesFile verifies config file
// is created from the embedded template.
func TestEnsureConfigFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, ".config", "gnbintax",
		"config.yaml")
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(content),
		"Config file content should match embedded template")
}

// TestEnsureConfigFile_Idempotent verifies existing file
// is not overwritten.
func TestEnsureConfigFile_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, ".config", "gnbintax",
		"config.yaml")

	customContent := "# Custom config\nconsensus:\n  threshold: 95"
	err = os.WriteFile(configPath, []byte(customContent), 0644)
	require.NoError(t, err)

	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content),
		"Existing config file should not be overwritten")
}

// TestConfigYAML_Embedded verifies embedded config is
// not empty.
func TestConfigYAML_Embedded(t *testing.T) {
	assert.NotEmpty(t, ConfigYAML,
		"Embedded ConfigYAML should not be empty")
	assert.Contains(t, ConfigYAML, "ranks",
		"ConfigYAML should contain ranks section")
	assert.Contains(t, ConfigYAML, "consensus",
		"ConfigYAML should contain consensus section")
	assert.Contains(t, ConfigYAML, "database",
		"ConfigYAML should contain database section")
	assert.Contains(t, ConfigYAML, "log",
		"ConfigYAML should contain log section")
}

// TestConfigYAML_Parses verifies the embedded template is valid YAML
// and its values match the compiled-in defaults.
func TestConfigYAML_Parses(t *testing.T) {
	var doc struct {
		Ranks     []string `yaml:"ranks"`
		Consensus struct {
			Threshold float64 `yaml:"threshold"`
			Method    string  `yaml:"method"`
		} `yaml:"consensus"`
		Database struct {
			Port      int `yaml:"port"`
			BatchSize int `yaml:"batch_size"`
		} `yaml:"database"`
	}
	err := yaml.Unmarshal([]byte(ConfigYAML), &doc)
	require.NoError(t, err)

	assert.Equal(t, 7, len(doc.Ranks))
	assert.Equal(t, "kingdom", doc.Ranks[0])
	assert.Equal(t, "species", doc.Ranks[6])
	assert.InEpsilon(t, 80.0, doc.Consensus.Threshold, 0.001)
	assert.Equal(t, "full", doc.Consensus.Method)
	assert.Equal(t, 5432, doc.Database.Port)
	assert.Equal(t, 50_000, doc.Database.BatchSize)
}
