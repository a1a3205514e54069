package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.7, cfg.Search.LexicalWeight)
	assert.Equal(t, 0.3, cfg.Search.SemanticWeight)
	assert.Equal(t, 60, cfg.Search.RRFConstant)
	assert.Equal(t, 15, cfg.Search.TopK)
	assert.Equal(t, 3200, cfg.Splitter.WindowSize)
	assert.Equal(t, 400, cfg.Splitter.WindowOverlap)
	assert.Equal(t, 768, cfg.Embedding.Dimensions)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Search, cfg.Search)
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  lexical_weight: 0.6
  semantic_weight: 0.4
  top_k: 5
embedding:
  dimensions: 1536
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Search.LexicalWeight)
	assert.Equal(t, 0.4, cfg.Search.SemanticWeight)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, 1536, cfg.Embedding.Dimensions)

	// Unset values come from defaults.
	assert.Equal(t, 60, cfg.Search.RRFConstant)
	assert.Equal(t, 3200, cfg.Splitter.WindowSize)
	assert.Equal(t, 30*time.Second, cfg.Search.RerankTimeout)
}

func TestLoadReadsAPIKeysFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("LLM_API_KEY", "llm-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gem-key", cfg.Embedding.APIKey)
	assert.Equal(t, "llm-key", cfg.LLM.APIKey)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
