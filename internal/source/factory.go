// Package source holds the message store adapters behind sms.Source.
package source

import (
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"smskit/internal/config"
	"smskit/internal/constants"
	"smskit/internal/sms"
)

// Dependencies are the connections a source may need. Only the one matching
// the configured type has to be set.
type Dependencies struct {
	Postgres *sql.DB
	Mongo    *mongo.Database
}

func New(cfg *config.Config, deps Dependencies) (sms.Source, error) {
	var src sms.Source

	switch cfg.Source.Type {
	case constants.SourceTypePostgres:
		if deps.Postgres == nil {
			return nil, fmt.Errorf("postgres source requires a database connection")
		}
		src = NewPostgresSource(deps.Postgres)
	case constants.SourceTypeMongoDB:
		if deps.Mongo == nil {
			return nil, fmt.Errorf("mongodb source requires a database connection")
		}
		src = NewMongoSource(deps.Mongo, cfg.Source.Collection)
	case constants.SourceTypeMemory, "":
		if cfg.Source.FixtureFile == "" {
			src = NewMemorySource()
			break
		}
		mem, err := LoadFixture(cfg.Source.FixtureFile)
		if err != nil {
			return nil, err
		}
		src = mem
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Source.Type)
	}

	return NewBreakerSource(src, cfg.CircuitBreaker), nil
}
