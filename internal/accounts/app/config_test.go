package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT", "SHUTDOWN_GRACE_PERIOD",
		"ACCOUNTS_CONFIG_FILE", "ACCOUNTS_CORS_ORIGINS",
		"ACCOUNTS_JWT_SECRET", "ACCOUNTS_JWT_EXPIRE", "ACCOUNTS_ISSUER",
		"ACCOUNTS_STORE_DRIVER", "ACCOUNTS_DATABASE_FILE", "ACCOUNTS_MONGO_URI",
		"ACCOUNTS_MONGO_DATABASE", "ACCOUNTS_POSTGRES_DSN", "ACCOUNTS_STORE_TIMEOUT",
		"ACCOUNTS_PEPPER_FILE", "ACCOUNTS_ADMIN_EMAIL", "ACCOUNTS_ADMIN_PASSWORD", "ACCOUNTS_ADMIN_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, 7*24*time.Hour, cfg.JWTExpire)
	require.Equal(t, DriverSQLite, cfg.StoreDriver)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.NoError(t, cfg.Validate(), "dev allows an empty secret")
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: prod
server:
  port: 9000
  cors_origins: ["https://app.example"]
token:
  secret: file-secret-that-is-at-least-32-bytes
  expire: 2d
store:
  driver: mongo
  timeout: 3s
  mongo:
    uri: mongodb://db:27017
admin:
  email: root@example.com
`), 0o600))

	t.Setenv("ACCOUNTS_CONFIG_FILE", path)
	t.Setenv("PORT", "7000")
	t.Setenv("ACCOUNTS_JWT_EXPIRE", "168h")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, 7000, cfg.Port)
	require.Equal(t, 168*time.Hour, cfg.JWTExpire)
	require.Equal(t, 3*time.Second, cfg.StoreTimeout)
	require.Equal(t, DriverMongo, cfg.StoreDriver)
	require.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	require.Equal(t, "accounts", cfg.MongoDatabase)
	require.Equal(t, []string{"https://app.example"}, cfg.CORSOrigins)
	require.Equal(t, "root@example.com", cfg.AdminEmail)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"ACCOUNTS_ISSUER=from-dotenv\nACCOUNTS_CORS_ORIGINS=http://a.example, http://b.example\n",
	), 0o600))
	// godotenv never overrides a variable that is already set, even to
	// an empty value, so drop the ones clearEnv blanked.
	require.NoError(t, os.Unsetenv("ACCOUNTS_ISSUER"))
	require.NoError(t, os.Unsetenv("ACCOUNTS_CORS_ORIGINS"))
	t.Cleanup(func() {
		_ = os.Unsetenv("ACCOUNTS_ISSUER")
		_ = os.Unsetenv("ACCOUNTS_CORS_ORIGINS")
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Issuer)
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfigBadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token:\n  expire: soon\n"), 0o600))
	t.Setenv("ACCOUNTS_CONFIG_FILE", path)

	_, err := LoadConfig()
	require.ErrorContains(t, err, "token.expire")

	t.Setenv("ACCOUNTS_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := defaultConfig()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"dev defaults", func(*Config) {}, ""},
		{"prod needs secret", func(c *Config) { c.Env = "prod" }, "ACCOUNTS_JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "at least 32 bytes"},
		{"mongo needs uri", func(c *Config) { c.StoreDriver = DriverMongo }, "ACCOUNTS_MONGO_URI"},
		{"postgres needs dsn", func(c *Config) { c.StoreDriver = DriverPostgres }, "ACCOUNTS_POSTGRES_DSN"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }, "unknown ACCOUNTS_STORE_DRIVER"},
		{"zero expiry", func(c *Config) { c.JWTExpire = 0 }, "ACCOUNTS_JWT_EXPIRE"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"168h", 168 * time.Hour, true},
		{"90s", 90 * time.Second, true},
		{"15", 15 * time.Minute, true},
		{"d", 0, false},
		{"soon", 0, false},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if !tt.ok {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}
