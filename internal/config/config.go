package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

var ErrUnknownEnv = errors.New("unknown env")

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	Storage        string `toml:"storage"` // postgres | mongo
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	MongoDBName    string `toml:"mongo_db_name"`
	MigrateOnStart bool   `toml:"migrate_on_start"` // postgres only

	// identity provider trust material (service account key)
	FirebaseKeyPath string `toml:"firebase_key_path"`

	AllowedOrigins []string `toml:"allowed_origins"`

	// env only
	DatabaseURL string `toml:"-"`
	MongoURI    string `toml:"-"`
	SentryDSN   string `toml:"-"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnv, env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file, picks the section for env and applies env var overrides
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.Environment = strings.ToLower(env)
	cfg.applyEnv(os.Getenv)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("MONGO_URI"); v != "" {
		c.MongoURI = v
	}
	if v := getenv("FIREBASE_KEY_PATH"); v != "" {
		c.FirebaseKeyPath = v
	}
	if v := getenv("SENTRY_DSN"); v != "" {
		c.SentryDSN = v
	}
}

func (c *Config) setDefaults() {
	if c.Storage == "" {
		c.Storage = StoragePostgres
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.MongoDBName == "" {
		c.MongoDBName = "blog_tracker_db"
	}
	if c.FirebaseKeyPath == "" {
		c.FirebaseKeyPath = "serviceAccountKey.json"
	}
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" && c.PostgresHost == "" {
			return errors.New("postgres storage: neither DATABASE_URL nor postgres_host set")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("mongo storage: MONGO_URI not set")
		}
	default:
		return fmt.Errorf("unknown storage: %s", c.Storage)
	}
	return nil
}

// PostgresConnString prefers DATABASE_URL and falls back to the host/port/db triple
func (c *Config) PostgresConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://postgres@%s:%s/%s",
		c.PostgresHost, c.PostgresPort, c.PostgresDBName,
	)
}
