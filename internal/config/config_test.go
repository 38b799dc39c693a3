package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAdmin = "0x0101010101010101010101010101010101010101"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MARKETD_ADMIN", testAdmin)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7245", cfg.Listen)
	require.Equal(t, uint64(1), cfg.ChainID)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.Compress)
	require.Equal(t, testAdmin, cfg.Admin)
	require.False(t, cfg.AdminAddress().IsZero())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MARKETD_ADMIN", testAdmin)
	t.Setenv("MARKETD_LISTEN", "0.0.0.0:9000")
	t.Setenv("MARKETD_CHAIN_ID", "42")
	t.Setenv("MARKETD_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.Listen)
	require.Equal(t, uint64(42), cfg.ChainID)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: "10.0.0.1:8080"
admin: "`+testAdmin+`"
chain_id: 7
domain_name: "custom"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:8080", cfg.Listen)
	require.Equal(t, uint64(7), cfg.ChainID)
	require.Equal(t, "custom", cfg.DomainName)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Admin = testAdmin

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing admin", func(c *Config) { c.Admin = "" }},
		{"malformed admin", func(c *Config) { c.Admin = "not-hex" }},
		{"missing listen", func(c *Config) { c.Listen = "" }},
		{"zero chain id", func(c *Config) { c.ChainID = 0 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
