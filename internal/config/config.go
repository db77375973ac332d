// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// server settings, database connections, model artifacts, scoring thresholds and
// ingestion tuning.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., HTTP server, databases,
// model artifacts) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	Artifacts   ArtifactsConfig
	Scoring     ScoringConfig
	Ingestion   IngestionConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains Kafka configuration for the alert event feed
type KafkaConfig struct {
	Brokers           string
	AlertTopic        string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	MaxWait           time.Duration
}

// ArtifactsConfig locates the trained model artifacts on disk.
// Absence of an artifact is a fatal scoring error, never a silent fallback.
type ArtifactsConfig struct {
	ClassifierPath string
	AnomalyPath    string
}

// ScoringConfig contains the decision policy thresholds and explanation tuning.
// Thresholds are policy, not code: they can be overridden without a rebuild.
type ScoringConfig struct {
	ReviewThreshold    float64
	SoftBlockThreshold float64
	HardBlockThreshold float64
	ExplainTopK        int
}

// IngestionConfig contains batch ingestion tuning
type IngestionConfig struct {
	ChunkSize      int           // Rows committed per store transaction
	ChunkPause     time.Duration // Pacing delay between chunk commits
	TransactionCSV string        // Batch source transaction file
	IdentityCSV    string        // Optional identity file merged on source id
	DefaultLimit   int           // Default row cap for an ingestion run
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.AlertTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_ALERT_TOPIC is required")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_MAX_WAIT must be greater than 0")
	}

	// Validate Artifacts config
	if c.Artifacts.ClassifierPath == "" {
		validationErrors = append(validationErrors, "ARTIFACT_CLASSIFIER_PATH is required")
	}
	if c.Artifacts.AnomalyPath == "" {
		validationErrors = append(validationErrors, "ARTIFACT_ANOMALY_PATH is required")
	}

	// Validate Scoring config. The three cutoffs must form a monotone ladder
	// so that top-down bucket evaluation stays well defined.
	if c.Scoring.ReviewThreshold <= 0 || c.Scoring.ReviewThreshold >= 1 {
		validationErrors = append(validationErrors, "SCORING_REVIEW_THRESHOLD must be in (0, 1)")
	}
	if c.Scoring.SoftBlockThreshold < c.Scoring.ReviewThreshold {
		validationErrors = append(validationErrors, "SCORING_SOFT_BLOCK_THRESHOLD must not be below SCORING_REVIEW_THRESHOLD")
	}
	if c.Scoring.HardBlockThreshold < c.Scoring.SoftBlockThreshold {
		validationErrors = append(validationErrors, "SCORING_HARD_BLOCK_THRESHOLD must not be below SCORING_SOFT_BLOCK_THRESHOLD")
	}
	if c.Scoring.ExplainTopK <= 0 {
		validationErrors = append(validationErrors, "SCORING_EXPLAIN_TOP_K must be greater than 0")
	}

	// Validate Ingestion config
	if c.Ingestion.ChunkSize <= 0 {
		validationErrors = append(validationErrors, "INGESTION_CHUNK_SIZE must be greater than 0")
	}
	if c.Ingestion.ChunkPause < 0 {
		validationErrors = append(validationErrors, "INGESTION_CHUNK_PAUSE must not be negative")
	}
	if c.Ingestion.DefaultLimit <= 0 {
		validationErrors = append(validationErrors, "INGESTION_DEFAULT_LIMIT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
