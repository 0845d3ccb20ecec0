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

	assert.Equal(t, "https://www.geni.com", cfg.Host)
	assert.Equal(t, DefaultConnectTimeout, time.Duration(cfg.ConnectTimeout))
	assert.Empty(t, cfg.AppID)
	assert.False(t, cfg.Cookies)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
app_id: my-app
host: https://sandbox.geni.com
cookies: true
logging: true
callback_port: 4242
connect_timeout: 90s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "my-app", cfg.AppID)
	assert.Equal(t, "https://sandbox.geni.com", cfg.Host)
	assert.True(t, cfg.Cookies)
	assert.True(t, cfg.Logging)
	assert.Equal(t, 4242, cfg.CallbackPort)
	assert.Equal(t, 90*time.Second, time.Duration(cfg.ConnectTimeout))
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app_id: partial\n"), 0600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "partial", cfg.AppID)
	assert.Equal(t, "https://www.geni.com", cfg.Host)
	assert.Equal(t, DefaultConnectTimeout, time.Duration(cfg.ConnectTimeout))
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("connect_timeout: soon\n"), 0600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestDuration_RoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	assert.Equal(t, 90*time.Second, d.Duration())

	marshalled, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", marshalled)
}
