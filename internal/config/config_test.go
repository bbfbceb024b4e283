package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, used, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, "Meu Blog", cfg.SiteTitle)
	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "builtin", cfg.Content.Source)
	assert.Equal(t, 2*time.Second, cfg.Redis.RequestTimeout)
	assert.Equal(t, 3, cfg.Redis.MaxRetries)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
siteTitle: Diário
server:
  address: ":9000"
content:
  source: dir
  dir: posts
redis:
  maxRetries: 5
`), 0o644))
	t.Setenv("FOLIO_SERVER_ADDRESS", ":9100")
	t.Setenv("FOLIO_LOG_LEVEL", "debug")

	cfg, used, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "Diário", cfg.SiteTitle)
	assert.Equal(t, ":9100", cfg.Server.Address)
	assert.Equal(t, "dir", cfg.Content.Source)
	assert.Equal(t, "posts", cfg.Content.Dir)
	assert.Equal(t, 5, cfg.Redis.MaxRetries)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ReportsDefaultFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("folio.yaml", []byte("siteTitle: Caderno\n"), 0o644))

	cfg, used, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "Caderno", cfg.SiteTitle)
	assert.Equal(t, "folio.yaml", filepath.Base(used))
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
