package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Pipeline.Variants)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.False(t, cfg.Intent.Cache.Enable)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  addr: ":9090"
pipeline:
  variants: 3
  top_k: 7
routes:
  analyze_pdf: "http://assistant.local/analyze-document"
intent:
  cache:
    enable: true
    max_entries: 64
    ttl_seconds: 30
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Pipeline.Variants)
	assert.Equal(t, 7, cfg.Pipeline.TopK)
	assert.Equal(t, "http://assistant.local/analyze-document", cfg.Routes.AnalyzePDF)
	assert.True(t, cfg.Intent.Cache.Enable)
	// untouched fields keep their defaults
	assert.Equal(t, "cl100k_base", cfg.Pipeline.Encoding)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.LLM.Model = ""
	cfg.Pipeline.TopK = 0
	cfg.Pipeline.Threshold = 1.5
	cfg.Intent.Cache.Enable = true
	cfg.Intent.Cache.MaxEntries = 0

	err := cfg.Validate()
	require.Error(t, err)
	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	fields := make(map[string]bool, len(verrs))
	for _, ve := range verrs {
		fields[ve.Field] = true
	}
	assert.True(t, fields["llm.model"])
	assert.True(t, fields["pipeline.top_k"])
	assert.True(t, fields["pipeline.threshold"])
	assert.True(t, fields["intent.cache.max_entries"])
}
