package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smskit/internal/config"
	"smskit/internal/logger"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "sms",
		Password: "p@ss",
		DBName:   "inbox",
	})
	assert.Equal(t, "postgres://sms:p%40ss@db:5432/inbox?sslmode=disable", dsn)
}

func TestDatabaseConnector_OptionalBackends(t *testing.T) {
	dc := NewDatabaseConnector(&config.Config{}, logger.NopLogger())

	db, err := dc.InitPostgreSQL(context.Background())
	require.NoError(t, err)
	assert.Nil(t, db)

	client, err := dc.InitMongoDB(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)

	assert.Empty(t, dc.ShutdownDatabases(context.Background(), nil, nil, nil))
}

func TestBase_InitBrokerDisabled(t *testing.T) {
	b := NewBase(&config.Config{}, logger.NopLogger())
	require.NoError(t, b.InitBroker())
	assert.Nil(t, b.Producer)
	assert.NoError(t, b.Shutdown(context.Background(), nil))
}

func TestBase_InitBrokerUnknownType(t *testing.T) {
	cfg := &config.Config{}
	cfg.Export.Enabled = true
	cfg.Broker.Type = "nats"

	b := NewBase(cfg, logger.NopLogger())
	assert.Error(t, b.InitBroker())
}
