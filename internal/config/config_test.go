package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)

	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, 60*time.Minute, c.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, c.RefreshTTL())
	assert.Equal(t, 5*time.Minute, c.OTPTTL())
	assert.Equal(t, 6, c.Auth.Reset.OTPLength)
	assert.Equal(t, 5, c.Auth.Reset.DailyCap)
	assert.Equal(t, 5, c.Auth.Reset.MaxAttempts)
	assert.Equal(t, "Customer", c.Auth.DefaultRole)
	assert.Equal(t, 6, c.Security.PasswordPolicy.MinLength)
	assert.Equal(t, 10*time.Second, c.Auth.OperationTimeout)
	assert.True(t, c.Rate.Enabled)
	assert.True(t, c.Metrics.Enabled)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
jwt:
  secret: "`+secret+`"
  access_ttl_minutes: 15
auth:
  reset:
    otp_ttl_minutes: 10
rate:
  login:
    window: 30s
`), 0o600))
	t.Setenv("SERVER_ADDR", ":9100")
	t.Setenv("RESET_DAILY_CAP", "3")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", c.Server.Addr, "env wins over yaml")
	assert.Equal(t, 15*time.Minute, c.AccessTTL())
	assert.Equal(t, 10*time.Minute, c.OTPTTL())
	assert.Equal(t, 3, c.Auth.Reset.DailyCap)
	assert.Equal(t, 30*time.Second, c.Rate.Login.Window)
}

func TestLoad_ExampleFileParses(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	c, err := Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "none", c.SMTP.TLS)
	assert.Equal(t, 30*time.Minute, c.Storage.Postgres.ConnMaxLifetime)
}

func TestValidate(t *testing.T) {
	t.Run("short secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "short")
		_, err := Load("")
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("JWT_SECRET", secret)
		t.Setenv("STORAGE_DRIVER", "postgres")
		_, err := Load("")
		assert.ErrorContains(t, err, "DATABASE_URL")
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", secret)
		t.Setenv("STORAGE_DRIVER", "mongo")
		_, err := Load("")
		assert.ErrorContains(t, err, "storage.driver")
	})
	t.Run("redis without addr", func(t *testing.T) {
		t.Setenv("JWT_SECRET", secret)
		t.Setenv("CACHE_KIND", "redis")
		_, err := Load("")
		assert.ErrorContains(t, err, "REDIS_ADDR")
	})
}
