package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Interest.AnnualRate = "0.18"
	cfg.Interest.GraceDays = 45
	cfg.Server.CleanupDelay = 2 * time.Second
	cfg.Storage = StorageConfig{
		Enabled:      true,
		Endpoint:     "http://localhost:9000",
		Region:       "ap-south-1",
		Bucket:       "ledger-reports",
		UsePathStyle: true,
		Prefix:       "recon",
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.12", cfg.Interest.AnnualRate)
	assert.Equal(t, 30, cfg.Interest.GraceDays)
	assert.Equal(t, 365, cfg.Interest.DayCountBasis)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.CleanupDelay)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Storage.Enabled)
	assert.NoError(t, cfg.Validate())

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, "0.12", p.AnnualRate.String())
	assert.Equal(t, 30, p.GraceDays)
	assert.Equal(t, 365, p.DayCountBasis)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("interest:\n  grace_days: 15\nserver:\n  cleanup_delay: 10s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Interest.GraceDays)
	assert.Equal(t, "0.12", cfg.Interest.AnnualRate)
	assert.Equal(t, 10*time.Second, cfg.Server.CleanupDelay)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("interest: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "grace_days: 30")
	assert.Contains(t, contents, "day_count_basis: 365")
	assert.Contains(t, contents, "cleanup_delay: 5s")
	assert.Regexp(t, `addr: ["']?:8080`, contents)
	assert.NotContains(t, contents, "secret_key")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LEDGERRECON_LOG_LEVEL":            "debug",
		"LEDGERRECON_SERVER_ADDR":          ":9090",
		"LEDGERRECON_STORAGE_ENABLED":      "true",
		"LEDGERRECON_STORAGE_BUCKET":       "recon",
		"LEDGERRECON_STORAGE_SECRET_KEY":   "s3cr3t",
		"LEDGERRECON_INTEREST_GRACE_DAYS":  "10",
		"LEDGERRECON_INTEREST_ANNUAL_RATE": "0.15",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "recon", cfg.Storage.Bucket)
	assert.Equal(t, "s3cr3t", cfg.Storage.SecretKey)
	assert.Equal(t, 10, cfg.Interest.GraceDays)
	assert.Equal(t, "0.15", cfg.Interest.AnnualRate)
	assert.Equal(t, "console", cfg.Log.Format, "unset variables leave fields alone")
}

func TestApplyEnv_BadValues(t *testing.T) {
	for key, value := range map[string]string{
		"LEDGERRECON_STORAGE_ENABLED":     "maybe",
		"LEDGERRECON_INTEREST_GRACE_DAYS": "ten",
	} {
		cfg := Default()
		err := cfg.ApplyEnv(func(k string) (string, bool) {
			if k == key {
				return value, true
			}
			return "", false
		})
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-numeric rate", func(c *Config) { c.Interest.AnnualRate = "twelve" }},
		{"negative rate", func(c *Config) { c.Interest.AnnualRate = "-0.1" }},
		{"negative grace", func(c *Config) { c.Interest.GraceDays = -1 }},
		{"odd basis", func(c *Config) { c.Interest.DayCountBasis = 300 }},
		{"no addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"zero timeout", func(c *Config) { c.Server.RequestTimeout = 0 }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }},
		{"storage without bucket", func(c *Config) { c.Storage.Enabled = true }},
		{"bad endpoint", func(c *Config) { c.Storage.Endpoint = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Storage.Enabled = true
	cfg.Storage.Bucket = "reports"
	assert.NoError(t, cfg.Validate())
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interest:\n  annual_rate: \"0.10\"\n"), 0o644))

	t.Setenv("LEDGERRECON_LOG_LEVEL", "error")
	cfg, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "0.10", cfg.Interest.AnnualRate)
	assert.Equal(t, "error", cfg.Log.Level)

	t.Setenv("LEDGERRECON_LOG_LEVEL", "chatty")
	_, err = Resolve(path)
	assert.Error(t, err)
}

func TestResolve_DefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default().Interest, cfg.Interest)
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Output = ""

	lc := cfg.LoggerConfig()
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stderr", lc.Output)
}
