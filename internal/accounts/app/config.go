package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Env                 string        // Environment (dev, test, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 5000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	CORSOrigins         []string      // Allowed browser origins (default: *)

	JWTSecret string        // Required outside dev: HS256 secret, at least 32 bytes
	JWTExpire time.Duration // Token lifetime (default: 7d)
	Issuer    string        // Issuer claim (default: accounts)

	StoreDriver   string        // sqlite, mongo or postgres (default: sqlite)
	DatabaseFile  string        // SQLite file (default: ./accounts.db)
	MongoURI      string        // Required for mongo
	MongoDatabase string        // Mongo database name (default: accounts)
	PostgresDSN   string        // Required for postgres
	StoreTimeout  time.Duration // Upper bound on each store call (default: 5s)

	PepperFile string // Password pepper, created on first start (default: ./pepper)

	AdminEmail    string // Optional: admin account ensured at startup
	AdminPassword string // Optional: generated and logged once when empty
	AdminName     string // Optional: display name for a new admin
}

// fileConfig is the optional YAML overlay named by ACCOUNTS_CONFIG_FILE.
// Durations are strings so "7d" works the same as in the environment.
type fileConfig struct {
	Env        string     `yaml:"env"`
	Server     fileServer `yaml:"server"`
	Log        fileLog    `yaml:"log"`
	Token      fileToken  `yaml:"token"`
	Store      fileStore  `yaml:"store"`
	PepperFile string     `yaml:"pepper_file"`
	Admin      fileAdmin  `yaml:"admin"`
}

type fileServer struct {
	Port                int      `yaml:"port"`
	ShutdownGracePeriod string   `yaml:"shutdown_grace_period"`
	CORSOrigins         []string `yaml:"cors_origins"`
}

type fileLog struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type fileToken struct {
	Secret string `yaml:"secret"`
	Expire string `yaml:"expire"`
	Issuer string `yaml:"issuer"`
}

type fileStore struct {
	Driver   string       `yaml:"driver"`
	File     string       `yaml:"file"`
	Timeout  string       `yaml:"timeout"`
	Mongo    fileMongo    `yaml:"mongo"`
	Postgres filePostgres `yaml:"postgres"`
}

type fileMongo struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type filePostgres struct {
	DSN string `yaml:"dsn"`
}

type fileAdmin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

func defaultConfig() Config {
	return Config{
		Env:                 "dev",
		LogLevel:            "info",
		LogFormat:           "json",
		Port:                5000,
		ShutdownGracePeriod: 10 * time.Second,
		CORSOrigins:         []string{"*"},
		JWTExpire:           7 * 24 * time.Hour,
		Issuer:              "accounts",
		StoreDriver:         DriverSQLite,
		DatabaseFile:        "accounts.db",
		MongoDatabase:       "accounts",
		StoreTimeout:        5 * time.Second,
		PepperFile:          "pepper",
	}
}

// LoadConfig reads configuration from, in increasing precedence: built-in
// defaults, the YAML file named by ACCOUNTS_CONFIG_FILE, and the
// environment. A .env file in the working directory is loaded first and
// never overrides variables that are already set.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("ACCOUNTS_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.Env, f.Env)
	setString(&cfg.LogLevel, f.Log.Level)
	setString(&cfg.LogFormat, f.Log.Format)
	if f.Server.Port != 0 {
		cfg.Port = f.Server.Port
	}
	if len(f.Server.CORSOrigins) > 0 {
		cfg.CORSOrigins = f.Server.CORSOrigins
	}
	setString(&cfg.JWTSecret, f.Token.Secret)
	setString(&cfg.Issuer, f.Token.Issuer)
	setString(&cfg.StoreDriver, f.Store.Driver)
	setString(&cfg.DatabaseFile, f.Store.File)
	setString(&cfg.MongoURI, f.Store.Mongo.URI)
	setString(&cfg.MongoDatabase, f.Store.Mongo.Database)
	setString(&cfg.PostgresDSN, f.Store.Postgres.DSN)
	setString(&cfg.PepperFile, f.PepperFile)
	setString(&cfg.AdminEmail, f.Admin.Email)
	setString(&cfg.AdminPassword, f.Admin.Password)
	setString(&cfg.AdminName, f.Admin.Name)

	for _, d := range []struct {
		dst   *time.Duration
		value string
		key   string
	}{
		{&cfg.ShutdownGracePeriod, f.Server.ShutdownGracePeriod, "server.shutdown_grace_period"},
		{&cfg.JWTExpire, f.Token.Expire, "token.expire"},
		{&cfg.StoreTimeout, f.Store.Timeout, "store.timeout"},
	} {
		if d.value == "" {
			continue
		}
		v, err := parseDuration(d.value)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}

	return nil
}

func (cfg *Config) applyEnv() {
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	if origins := os.Getenv("ACCOUNTS_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	cfg.JWTSecret = getEnvOrDefault("ACCOUNTS_JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpire = getEnvDurationOrDefault("ACCOUNTS_JWT_EXPIRE", cfg.JWTExpire)
	cfg.Issuer = getEnvOrDefault("ACCOUNTS_ISSUER", cfg.Issuer)

	cfg.StoreDriver = strings.ToLower(getEnvOrDefault("ACCOUNTS_STORE_DRIVER", cfg.StoreDriver))
	cfg.DatabaseFile = getEnvOrDefault("ACCOUNTS_DATABASE_FILE", cfg.DatabaseFile)
	cfg.MongoURI = getEnvOrDefault("ACCOUNTS_MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = getEnvOrDefault("ACCOUNTS_MONGO_DATABASE", cfg.MongoDatabase)
	cfg.PostgresDSN = getEnvOrDefault("ACCOUNTS_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.StoreTimeout = getEnvDurationOrDefault("ACCOUNTS_STORE_TIMEOUT", cfg.StoreTimeout)

	cfg.PepperFile = getEnvOrDefault("ACCOUNTS_PEPPER_FILE", cfg.PepperFile)

	cfg.AdminEmail = getEnvOrDefault("ACCOUNTS_ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPassword = getEnvOrDefault("ACCOUNTS_ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.AdminName = getEnvOrDefault("ACCOUNTS_ADMIN_NAME", cfg.AdminName)
}

// IsDev reports whether the service runs in development mode.
func (cfg Config) IsDev() bool { return cfg.Env == "dev" }

// Validate rejects configurations the service cannot start with. An empty
// JWT secret is allowed in dev only; New then generates an ephemeral one.
func (cfg Config) Validate() error {
	var errs []error

	switch {
	case cfg.JWTSecret == "" && !cfg.IsDev():
		errs = append(errs, errors.New("ACCOUNTS_JWT_SECRET is required outside dev"))
	case cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32:
		errs = append(errs, errors.New("ACCOUNTS_JWT_SECRET must be at least 32 bytes"))
	}

	if cfg.JWTExpire <= 0 {
		errs = append(errs, errors.New("ACCOUNTS_JWT_EXPIRE must be positive"))
	}
	if cfg.StoreTimeout <= 0 {
		errs = append(errs, errors.New("ACCOUNTS_STORE_TIMEOUT must be positive"))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", cfg.Port))
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.DatabaseFile == "" {
			errs = append(errs, errors.New("ACCOUNTS_DATABASE_FILE is required for sqlite"))
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			errs = append(errs, errors.New("ACCOUNTS_MONGO_URI is required for mongo"))
		}
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			errs = append(errs, errors.New("ACCOUNTS_POSTGRES_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ACCOUNTS_STORE_DRIVER %q", cfg.StoreDriver))
	}

	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDuration accepts Go durations ("90s", "168h"), a day suffix ("7d")
// and bare integers as minutes.
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}

	return 0, fmt.Errorf("invalid duration %q", value)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := parseDuration(value); err == nil {
		return d
	}

	return defaultValue
}
