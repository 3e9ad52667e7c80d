package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"consolidation/internal/core/domain/model/kernel"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	StorageDriver   string
	LockBackend     string
	LockWaitTimeout time.Duration
	RedisAddr       string

	KafkaHost             string
	KafkaOrderEventsTopic string
	KafkaOrderIntakeTopic string
	KafkaConsumerGroup    string

	DefaultMaxBatchWeightKg float64
	AutoBatchCron           string
	OfficeIDs               []kernel.UUID

	LogLevel  slog.Level
	LogFormat string
}

// LoadConfig reads the environment, after loading envFile when it exists.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		HTTPPort:   envOr("HTTP_PORT", "8080"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envOr("DB_NAME", "consolidation"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		StorageDriver: strings.ToLower(envOr("STORAGE_DRIVER", StorageDriverPostgres)),
		LockBackend:   strings.ToLower(envOr("LOCK_BACKEND", LockBackendMemory)),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),

		KafkaHost:             os.Getenv("KAFKA_HOST"),
		KafkaOrderEventsTopic: envOr("KAFKA_ORDER_EVENTS_TOPIC", "consolidation.order-events"),
		KafkaOrderIntakeTopic: os.Getenv("KAFKA_ORDER_INTAKE_TOPIC"),
		KafkaConsumerGroup:    envOr("KAFKA_CONSUMER_GROUP", "consolidation"),

		AutoBatchCron: os.Getenv("AUTO_BATCH_CRON"),
		LogFormat:     strings.ToLower(envOr("LOG_FORMAT", "json")),
	}

	var waitErr, weightErr, officesErr, levelErr, driverErr, lockErr error
	cfg.LockWaitTimeout, waitErr = time.ParseDuration(envOr("LOCK_WAIT_TIMEOUT", "5s"))
	if waitErr != nil {
		waitErr = fmt.Errorf("LOCK_WAIT_TIMEOUT: %w", waitErr)
	}
	cfg.DefaultMaxBatchWeightKg, weightErr = strconv.ParseFloat(envOr("DEFAULT_MAX_BATCH_WEIGHT_KG", "500"), 64)
	if weightErr != nil {
		weightErr = fmt.Errorf("DEFAULT_MAX_BATCH_WEIGHT_KG: %w", weightErr)
	}
	cfg.OfficeIDs, officesErr = parseOfficeIDs(os.Getenv("OFFICE_IDS"))
	if levelErr = cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); levelErr != nil {
		levelErr = fmt.Errorf("LOG_LEVEL: %w", levelErr)
	}
	if cfg.StorageDriver != StorageDriverPostgres && cfg.StorageDriver != StorageDriverMemory {
		driverErr = fmt.Errorf("STORAGE_DRIVER: %q is not postgres or memory", cfg.StorageDriver)
	}
	if cfg.LockBackend != LockBackendMemory && cfg.LockBackend != LockBackendRedis {
		lockErr = fmt.Errorf("LOCK_BACKEND: %q is not memory or redis", cfg.LockBackend)
	}

	if err := errors.Join(waitErr, weightErr, officesErr, levelErr, driverErr, lockErr); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN is the lib/pq style connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) KafkaBrokers() []string {
	if c.KafkaHost == "" {
		return nil
	}
	return strings.Split(c.KafkaHost, ",")
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseOfficeIDs(raw string) ([]kernel.UUID, error) {
	var ids []kernel.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := kernel.UUIDFromString(part)
		if err != nil {
			return nil, fmt.Errorf("OFFICE_IDS: %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
