package config

import (
	"fmt"
	"strings"

	"smskit/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateSource(cfg.Source, cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validatePermission(cfg.Permission, cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateQuery(cfg.Query); err != nil {
		errors = append(errors, err)
	}

	if err := validateExport(cfg.Export, cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateSource(cfg SourceConfig, db DatabaseConfig) error {
	switch cfg.Type {
	case constants.SourceTypeMemory:
		return nil
	case constants.SourceTypePostgres:
		if db.Postgres.Host == "" {
			return &ValidationError{
				Field:   "database.postgres.host",
				Message: "postgres source requires database.postgres settings",
			}
		}
	case constants.SourceTypeMongoDB:
		if db.MongoDB.URI == "" {
			return &ValidationError{
				Field:   "database.mongodb.uri",
				Message: "mongodb source requires database.mongodb settings",
			}
		}
	default:
		return &ValidationError{
			Field:   "source.type",
			Message: fmt.Sprintf("unknown source type: %s (supported: postgres, mongodb, memory)", cfg.Type),
		}
	}
	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	if cfg.MongoDB.URI != "" {
		if err := validateMongoDB(cfg.MongoDB); err != nil {
			return err
		}
	}

	if cfg.ConnectRetry.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "database.connect_retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.ConnectRetry.MaxInterval > 0 && cfg.ConnectRetry.InitialInterval > 0 &&
		cfg.ConnectRetry.MaxInterval < cfg.ConnectRetry.InitialInterval {
		return &ValidationError{
			Field:   "database.connect_retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	return nil
}

func validatePermission(cfg PermissionConfig, db DatabaseConfig) error {
	switch cfg.Store {
	case "", constants.PermissionStoreMemory:
	case constants.PermissionStoreRedis:
		if db.Redis.Host == "" {
			return &ValidationError{
				Field:   "database.redis.host",
				Message: "redis permission store requires database.redis settings",
			}
		}
	default:
		return &ValidationError{
			Field:   "permission.store",
			Message: fmt.Sprintf("unknown permission store: %s (supported: memory, redis)", cfg.Store),
		}
	}

	switch cfg.AutoDecision {
	case "", constants.AutoDecisionGrant, constants.AutoDecisionDeny:
	default:
		return &ValidationError{
			Field:   "permission.auto_decision",
			Message: fmt.Sprintf("invalid auto_decision: %s (valid: grant, deny)", cfg.AutoDecision),
		}
	}

	if cfg.RequestTimeout < 0 {
		return &ValidationError{
			Field:   "permission.request_timeout",
			Message: "request timeout must be non-negative",
		}
	}

	return nil
}

func validateQuery(cfg QueryConfig) error {
	if cfg.MaxLimit < 0 {
		return &ValidationError{
			Field:   "query.max_limit",
			Message: "max_limit must be non-negative",
		}
	}
	return nil
}

func validateExport(cfg ExportConfig, broker BrokerConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if broker.Type != "kafka" {
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("export requires broker type kafka, got %q", broker.Type),
		}
	}

	if len(broker.Kafka.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, b := range broker.Kafka.Brokers {
		if b == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Topic == "" {
		return &ValidationError{
			Field:   "export.topic",
			Message: "export topic is required",
		}
	}

	if cfg.Timeout < 0 {
		return &ValidationError{
			Field:   "export.timeout",
			Message: "export timeout must be non-negative",
		}
	}

	return nil
}
