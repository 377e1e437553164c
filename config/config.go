package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"studytrack/store"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port            string
	LogLevel        string
	StoreBackend    string
	MongoURI        string
	MongoDB         string
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	MockStorePath   string
	SessionPageSize int
	JWTSecret       string
	Location        *time.Location
	AWSRegion       string
	S3Region        string
	S3Bucket        string
	SESEmail        string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          get("PORT", "8080"),
		LogLevel:      get("LOG_LEVEL", "info"),
		StoreBackend:  strings.ToLower(get("STORE_BACKEND", BackendMemory)),
		MongoURI:      get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       get("MONGO_DB", "studytrack"),
		DBHost:        get("DB_HOST", "localhost"),
		DBUser:        get("DB_USER", ""),
		DBPassword:    get("DB_PASSWORD", ""),
		DBName:        get("DB_NAME", "studytrack"),
		DBPort:        get("DB_PORT", "5432"),
		MockStorePath: get("MOCK_STORE_PATH", ""),
		JWTSecret:     get("JWT_SECRET", ""),
		AWSRegion:     get("AWS_REGION", ""),
		S3Bucket:      get("S3_BUCKET", ""),
		SESEmail:      get("SES_EMAIL", ""),
	}
	cfg.S3Region = get("S3_REGION", cfg.AWSRegion)

	size, err := strconv.Atoi(get("SESSION_PAGE_SIZE", strconv.Itoa(store.DefaultSessionPageSize)))
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("SESSION_PAGE_SIZE must be a positive integer")
	}
	cfg.SessionPageSize = size

	loc, err := time.LoadLocation(get("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.StoreBackend {
	case BackendMongo, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("STORE_BACKEND %q must be one of mongo, postgres, memory", cfg.StoreBackend)
	}
	return cfg, nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// OpenStore connects the configured backend. It is called once at startup.
func OpenStore(ctx context.Context, c *Config, log *slog.Logger) (store.Store, error) {
	switch c.StoreBackend {
	case BackendMongo:
		log.Info("opening document store", "backend", c.StoreBackend, "database", c.MongoDB)
		return store.OpenMongoStore(ctx, c.MongoURI, c.MongoDB, c.SessionPageSize)
	case BackendPostgres:
		log.Info("opening relational store", "backend", c.StoreBackend, "host", c.DBHost, "database", c.DBName)
		db, err := gorm.Open(postgres.Open(c.PostgresDSN()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return store.NewGormStore(db, c.SessionPageSize)
	default:
		log.Info("opening mock store", "backend", c.StoreBackend, "path", c.MockStorePath)
		return store.NewMemoryStore(c.MockStorePath, c.SessionPageSize)
	}
}
