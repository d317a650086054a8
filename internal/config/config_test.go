package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centavo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: /tmp/x.sqlite\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.sqlite", cfg.Database.Path)
	assert.Equal(t, ":5000", cfg.Server.Listen)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "preserve-history", cfg.Installments.DeletePolicy)
	assert.Equal(t, 30, cfg.Quotes.IntervalMinutes)
	assert.False(t, cfg.Quotes.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centavo.yaml")

	cfg := Default()
	cfg.Server.Listen = ":8080"
	cfg.Installments.DeletePolicy = "strict-cascade"
	cfg.Quotes.Enabled = true
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", got.Server.Listen)
	assert.Equal(t, "strict-cascade", got.Installments.DeletePolicy)
	assert.True(t, got.Quotes.Enabled)
}
