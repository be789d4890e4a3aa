package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
)

type Config struct {
	DB      DBConfig      `toml:"db"`
	Storage StorageConfig `toml:"storage"`
	JWT     JWTConfig     `toml:"jwt"`
	Server  ServerConfig  `toml:"server"`
	Share   ShareConfig   `toml:"share"`
	Redis   RedisConfig   `toml:"redis"`
	Kafka   KafkaConfig   `toml:"kafka"`
	Log     LogConfig     `toml:"log"`
}

type DBConfig struct {
	Driver     string `toml:"driver"`
	Host       string `toml:"host"`
	Port       string `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	Name       string `toml:"name"`
	SSLMode    string `toml:"sslmode"`
	SQLitePath string `toml:"sqlite_path"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageMinIO = "minio"
	StorageS3    = "s3"
)

type StorageConfig struct {
	Backend        string `toml:"backend"`
	Endpoint       string `toml:"endpoint"`
	PublicEndpoint string `toml:"public_endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	Bucket         string `toml:"bucket"`
	Region         string `toml:"region"`
	UseSSL         bool   `toml:"use_ssl"`
	// PublicRead makes PublicURL return direct object links instead of "".
	PublicRead bool `toml:"public_read"`
}

type JWTConfig struct {
	Secret          string `toml:"secret"`
	ExpirationHours int    `toml:"expiration_hours"`
}

type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	BodyLimitMB    int      `toml:"body_limit_mb"`
	CookieSecure   bool     `toml:"cookie_secure"`
}

type ShareConfig struct {
	SignedURLTTL time.Duration `toml:"signed_url_ttl"`
	BasePath     string        `toml:"base_path"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DB: DBConfig{
			Driver:     DriverPostgres,
			Host:       "localhost",
			Port:       "5432",
			User:       "gdrive",
			Password:   "gdrive_secret",
			Name:       "gdrive",
			SSLMode:    "disable",
			SQLitePath: "gdrive.db",
		},
		Storage: StorageConfig{
			Backend:   StorageMinIO,
			Endpoint:  "localhost:9000",
			AccessKey: "gdrive",
			SecretKey: "gdrive_secret",
			Bucket:    "uploads",
			Region:    "us-east-1",
		},
		JWT: JWTConfig{
			Secret:          "change-me-in-production",
			ExpirationHours: 24,
		},
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			BodyLimitMB:    100,
		},
		Share: ShareConfig{
			SignedURLTTL: 5 * time.Minute,
			BasePath:     "/share/",
		},
		Kafka: KafkaConfig{
			Topic: "drive.changes",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load layers defaults, the optional TOML file at path, then the environment.
// A missing or malformed file is an error; unknown keys only warn.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := overlayFile(cfg, path); err != nil {
			return nil, err
		}
	}

	overlayEnv(cfg)

	if cfg.Storage.PublicEndpoint == "" {
		cfg.Storage.PublicEndpoint = cfg.Storage.Endpoint
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("config_undecoded_keys", map[string]interface{}{
			"path": path,
			"keys": keys,
		})
	}
	return nil
}

func overlayEnv(cfg *Config) {
	cfg.DB.Driver = getEnv("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.SQLitePath = getEnv("DB_SQLITE_PATH", cfg.DB.SQLitePath)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Endpoint = getEnv("STORAGE_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.PublicEndpoint = getEnv("STORAGE_PUBLIC_ENDPOINT", cfg.Storage.PublicEndpoint)
	cfg.Storage.AccessKey = getEnv("STORAGE_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("STORAGE_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Region = getEnv("STORAGE_REGION", cfg.Storage.Region)
	cfg.Storage.UseSSL = getEnvAsBool("STORAGE_USE_SSL", cfg.Storage.UseSSL)
	cfg.Storage.PublicRead = getEnvAsBool("STORAGE_PUBLIC_READ", cfg.Storage.PublicRead)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpirationHours = getEnvAsInt("JWT_EXPIRATION_HOURS", cfg.JWT.ExpirationHours)

	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = getEnvAsList("SERVER_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.BodyLimitMB = getEnvAsInt("SERVER_BODY_LIMIT_MB", cfg.Server.BodyLimitMB)
	cfg.Server.CookieSecure = getEnvAsBool("SERVER_COOKIE_SECURE", cfg.Server.CookieSecure)

	cfg.Share.SignedURLTTL = getEnvAsDuration("SHARE_SIGNED_URL_TTL", cfg.Share.SignedURLTTL)
	cfg.Share.BasePath = getEnv("SHARE_BASE_PATH", cfg.Share.BasePath)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.Kafka.Brokers = getEnvAsList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Development = getEnvAsBool("LOG_DEVELOPMENT", cfg.Log.Development)
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid db driver %q: must be %s or %s", c.DB.Driver, DriverPostgres, DriverSQLite)
	}
	switch c.Storage.Backend {
	case StorageMinIO, StorageS3:
	default:
		return fmt.Errorf("invalid storage backend %q: must be %s or %s", c.Storage.Backend, StorageMinIO, StorageS3)
	}
	if c.JWT.ExpirationHours <= 0 {
		return fmt.Errorf("jwt expiration hours must be positive, got %d", c.JWT.ExpirationHours)
	}
	if c.Share.SignedURLTTL <= 0 {
		return fmt.Errorf("share signed url ttl must be positive, got %s", c.Share.SignedURLTTL)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsList splits a comma-separated value; an empty variable yields an empty list.
func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
