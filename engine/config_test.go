package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigInlineRules(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	writeFile(t, path, `name: spoken
options:
  words: {"1": one, "2": two}
ruleset:
  rules:
    "?+?": "%1 plus %2"
    "?": "%1"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "spoken", config.Name)
	require.NotNil(t, config.Rules)
	assert.Len(t, config.Rules.Rules, 2)

	e, err := New(path)
	require.NoError(t, err)
	results, err := e.RunSource(context.Background(), "x", []byte("1+2"))
	require.NoError(t, err)
	assert.Equal(t, "one plus two", results[0].Output)
}

func TestLoadConfigRuleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules", "sums.yaml"), `rules:
  "?+?": "%1 and %2"
  "?": "%1"
`)
	path := filepath.Join(dir, DefaultConfigFile)
	writeFile(t, path, "name: files\nruleFile: rules/sums.yaml\n")

	e, err := New(path)
	require.NoError(t, err)
	results, err := e.RunSource(context.Background(), "x", []byte("1+2"))
	require.NoError(t, err)
	assert.Equal(t, "1 and 2", results[0].Output)
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"both rule sources", "name: x\nruleFile: r.yaml\nruleset:\n  rules: {\"?\": \"%1\"}\n", "mutually exclusive"},
		{"rules option and rule set", "name: x\noptions:\n  rules: \"rules: {}\"\nruleset:\n  rules: {}\n", "both as an option"},
		{"missing rule file", "name: x\nruleFile: nowhere.yaml\n", "nowhere.yaml"},
		{"bad rule set", "name: x\nruleset:\n  colours: {}\n", "unknown template key colours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeFile(t, path, tt.content)
			_, err := New(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := New(filepath.Join(dir, "absent.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := yaml.Marshal(DefaultConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	writeFile(t, path, string(data))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mtrans", config.Name)
	assert.Equal(t, DefaultCacheDir, config.CacheDir)
	assert.Equal(t, DefaultConfig().Rules, config.Rules)

	e, err := New(path)
	require.NoError(t, err)
	results, err := e.RunSource(context.Background(), "x", []byte("1+2"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Failed())
	assert.Contains(t, results[0].Output, "plus")
}
