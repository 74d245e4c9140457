package common

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

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Type)
	assert.Equal(t, 20, cfg.Scraper.MaxPages)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.True(t, cfg.Engine.StepDataHistory)
	require.NoError(t, cfg.Validate())
}

func TestDurationHelpers(t *testing.T) {
	engine := &EngineConfig{StepTimeout: "90s"}
	assert.Equal(t, 90*time.Second, engine.StepTimeoutDuration())
	assert.Equal(t, 60*time.Second, (&EngineConfig{}).StepTimeoutDuration())
	assert.Equal(t, 60*time.Second, (&EngineConfig{StepTimeout: "bogus"}).StepTimeoutDuration())
	assert.Equal(t, 60*time.Second, (&EngineConfig{StepTimeout: "-5s"}).StepTimeoutDuration())

	scraper := &ScraperConfig{RequestTimeout: "10s", RequestDelay: "0s"}
	assert.Equal(t, 10*time.Second, scraper.RequestTimeoutDuration())
	// an explicit zero delay disables rate limiting
	assert.Equal(t, time.Duration(0), scraper.RequestDelayDuration())
	assert.Equal(t, 500*time.Millisecond, (&ScraperConfig{}).RequestDelayDuration())
	assert.Equal(t, 30*time.Second, (&ScraperConfig{}).RequestTimeoutDuration())

	auth := &AuthConfig{StateTTL: "5m"}
	assert.Equal(t, 5*time.Minute, auth.StateTTLDuration())
	assert.Equal(t, 15*time.Minute, (&AuthConfig{}).StateTTLDuration())
}

func TestLoadFromFiles_Precedence(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	require.NoError(t, os.WriteFile(base, []byte(`
environment = "production"

[server]
port = 9000

[scraper]
max_pages = 5
`), 0644))

	local := filepath.Join(dir, "local.toml")
	require.NoError(t, os.WriteFile(local, []byte(`
[server]
port = 9001
`), 0644))

	cfg, err := LoadFromFiles(base, local)
	require.NoError(t, err)

	// later files win over earlier files, which win over defaults
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Scraper.MaxPages)
	// untouched values keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("CONDUIT_SERVER_PORT", "7777")
	t.Setenv("CONDUIT_SERVER_HOST", "0.0.0.0")
	t.Setenv("CONDUIT_LOG_LEVEL", "debug")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFiles_MissingFileFails(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := DefaultConfig()
	ApplyFlagOverrides(cfg, 9999, "example.host")
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "example.host", cfg.Server.Host)

	// zero values leave the config untouched
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "example.host", cfg.Server.Host)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Type = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LLM.Provider = "mystery"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.NoError(t, ValidateCronSchedule("0 6 * * 1"))
	assert.Error(t, ValidateCronSchedule("not a schedule"))
	assert.Error(t, ValidateCronSchedule("* * * * * *")) // six fields
	assert.Error(t, ValidateCronSchedule(""))
}
