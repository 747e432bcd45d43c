package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  env: dev
  timezone: Asia/Tokyo
http:
  addr: ":9090"
catalog:
  products:
    - name: A
      stock: 120
      unit: pcs
    - name: B
      stock: 85
      unit: pcs
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, ":9090", c.HTTP.Addr)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, 30, c.Telegram.Timeout)
	assert.Equal(t, []Product{
		{Name: "A", Stock: 120, Unit: "pcs"},
		{Name: "B", Stock: 85, Unit: "pcs"},
	}, c.Catalog.Products)

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_HTTP_ADDR", ":7070")
	t.Setenv("APP_TELEGRAM_TOKEN", "secret")

	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.HTTP.Addr)
	assert.Equal(t, "secret", c.Telegram.Token)
}

func TestLoad_PostgresNeedsDSN(t *testing.T) {
	_, err := Load(writeConfig(t, sample+"postgres:\n  enabled: true\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
