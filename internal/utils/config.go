package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	ServerPort  string
	StoreDriver string
	Auth        AuthConfig
	Postgres    PostgresConfig
	Mongo       MongoConfig
	Redis       RedisConfig
	Logging     LoggingConfig
}

// AuthConfig carries the signing secret and the tunables of the account
// service. An empty JWTSecret is allowed; token issuance fails instead.
type AuthConfig struct {
	JWTSecret           string
	TokenTTL            time.Duration
	BcryptCost          int
	UsernameMaxAttempts int
	SigninMaxAttempts   int
	SigninLockout       time.Duration
}

type PostgresConfig struct {
	DSN               string
	Host              string
	Port              int
	User              string
	Password          string
	Database          string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

type MongoConfig struct {
	URI                  string
	Database             string
	ConnectTimeout       time.Duration
	EmailCaseInsensitive bool
}

type RedisConfig struct {
	URL string
}

type LoggingConfig struct {
	Level        string
	Encoding     string
	Development  bool
	EnableCaller bool
	ServiceName  string
}

// LoadEnvFiles loads .env from the working directory. A missing file is not
// an error so that variables can be supplied by the environment.
func LoadEnvFiles(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil
		}
		return err
	}
	return nil
}

func LoadConfig() (*Config, error) {
	port := envOrDefault("PORT", "3000")

	pgPort, _ := strconv.Atoi(envOrDefault("POSTGRES_PORT", "5432"))
	maxConns := parseInt32(envOrDefault("POSTGRES_MAX_CONNS", "8"), 8)
	minConns := parseInt32(envOrDefault("POSTGRES_MIN_CONNS", "1"), 1)

	logging := LoggingConfig{
		Level:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		Encoding:     strings.ToLower(envOrDefault("LOG_ENCODING", "console")),
		Development:  parseBool(envOrDefault("LOG_DEVELOPMENT", "false"), false),
		EnableCaller: parseBool(envOrDefault("LOG_CALLER", "false"), false),
		ServiceName:  envOrDefault("SERVICE_NAME", "wwb-blog-auth"),
	}

	mongoURI := os.Getenv("DB_LOCATION")
	if mongoURI == "" {
		mongoURI = envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	}

	secret := strings.TrimSpace(os.Getenv("SECRET_ACCESS_KEY"))
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}

	cfg := &Config{
		ServerPort:  port,
		StoreDriver: strings.ToLower(envOrDefault("STORE_DRIVER", StoreDriverMongo)),
		Auth: AuthConfig{
			JWTSecret:           secret,
			TokenTTL:            parseDuration(envOrDefault("TOKEN_TTL", "100h"), 100*time.Hour),
			BcryptCost:          parseInt(envOrDefault("BCRYPT_COST", "10"), 10),
			UsernameMaxAttempts: parseInt(envOrDefault("USERNAME_MAX_ATTEMPTS", "3"), 3),
			SigninMaxAttempts:   parseInt(envOrDefault("SIGNIN_MAX_ATTEMPTS", "5"), 5),
			SigninLockout:       parseDuration(envOrDefault("SIGNIN_LOCKOUT", "15m"), 15*time.Minute),
		},
		Postgres: PostgresConfig{
			DSN:               os.Getenv("POSTGRES_DSN"),
			Host:              envOrDefault("POSTGRES_HOST", "localhost"),
			Port:              pgPort,
			User:              envOrDefault("POSTGRES_USER", "postgres"),
			Password:          os.Getenv("POSTGRES_PASSWORD"),
			Database:          envOrDefault("POSTGRES_DB", "postgres"),
			MaxConns:          maxConns,
			MinConns:          minConns,
			MaxConnLifetime:   parseDuration(envOrDefault("POSTGRES_MAX_CONN_LIFETIME", "1h"), time.Hour),
			MaxConnIdleTime:   parseDuration(envOrDefault("POSTGRES_MAX_CONN_IDLE", "30m"), 30*time.Minute),
			HealthCheckPeriod: parseDuration(envOrDefault("POSTGRES_HEALTH_CHECK_PERIOD", "1m"), time.Minute),
			ConnectTimeout:    parseDuration(envOrDefault("POSTGRES_CONNECT_TIMEOUT", "5s"), 5*time.Second),
		},
		Mongo: MongoConfig{
			URI:                  mongoURI,
			Database:             envOrDefault("MONGO_DATABASE", "blog"),
			ConnectTimeout:       parseDuration(envOrDefault("MONGO_CONNECT_TIMEOUT", "5s"), 5*time.Second),
			EmailCaseInsensitive: parseBool(envOrDefault("MONGO_EMAIL_CASE_INSENSITIVE", "false"), false),
		},
		Redis: RedisConfig{
			URL: strings.TrimSpace(os.Getenv("REDIS_URL")),
		},
		Logging: logging,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverMongo, StoreDriverPostgres:
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Auth.UsernameMaxAttempts < 1 {
		c.Auth.UsernameMaxAttempts = 1
	}

	return nil
}

func (c PostgresConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(value string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return i
}

func parseInt32(value string, fallback int32) int32 {
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return int32(i)
}

func parseBool(value string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}
