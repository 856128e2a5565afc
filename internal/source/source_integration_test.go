//go:build integration

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"smskit/internal/testinfra"
	"smskit/pkg/migrations"
)

func TestPostgresSource_QueryMessages(t *testing.T) {
	db := testinfra.Postgres(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sms_inbox (address, body, date, type) VALUES
			('FRIEND', 'See you at 5', 1700000000000, 1),
			('VK-HDFCBK', 'Rs 500 debited', 1700000300000, 1),
			(NULL, 'no sender', 1700000200000, NULL),
			('AX-NODATE', 'undated', NULL, 2)
	`)
	require.NoError(t, err)

	src := NewPostgresSource(db)

	rows, err := src.QueryMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "VK-HDFCBK", *rows[0].Address)
	assert.Nil(t, rows[1].Address)
	assert.Nil(t, rows[1].Type)
	assert.Equal(t, "FRIEND", *rows[2].Address)
	assert.Nil(t, rows[3].Date)

	capped, err := src.QueryMessages(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestPostgresSource_ContextCancellation(t *testing.T) {
	db := testinfra.Postgres(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPostgresSource(db).QueryMessages(ctx, 10)
	require.Error(t, err)
}

func TestMongoSource_QueryMessages(t *testing.T) {
	db := testinfra.Mongo(t)
	ctx := context.Background()

	require.NoError(t, migrations.EnsureInboxCollection(ctx, db, "sms_inbox"))

	_, err := db.Collection("sms_inbox").InsertMany(ctx, []interface{}{
		bson.D{{Key: "address", Value: "FRIEND"}, {Key: "body", Value: "See you at 5"}, {Key: "date", Value: int64(1700000000000)}, {Key: "type", Value: int32(1)}},
		bson.D{{Key: "address", Value: "VK-HDFCBK"}, {Key: "body", Value: "Rs 500 debited"}, {Key: "date", Value: int64(1700000300000)}, {Key: "type", Value: int32(1)}},
		bson.D{{Key: "body", Value: "no sender"}, {Key: "date", Value: int64(1700000200000)}},
	})
	require.NoError(t, err)

	src := NewMongoSource(db, "sms_inbox")

	rows, err := src.QueryMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "VK-HDFCBK", *rows[0].Address)
	assert.Nil(t, rows[1].Address)
	assert.Nil(t, rows[1].Type)
	assert.Equal(t, "no sender", *rows[1].Body)
	assert.Equal(t, int64(1700000000000), *rows[2].Date)

	capped, err := src.QueryMessages(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)

	// Index creation is idempotent.
	require.NoError(t, migrations.EnsureInboxCollection(ctx, db, "sms_inbox"))
}

func TestMongoSource_GarbledFieldDegradesOnlyThatField(t *testing.T) {
	db := testinfra.Mongo(t)
	ctx := context.Background()

	_, err := db.Collection("sms_garbled").InsertMany(ctx, []interface{}{
		bson.D{{Key: "address", Value: "AX-SBI"}, {Key: "body", Value: "INR 20 credited"}, {Key: "date", Value: "yesterday"}, {Key: "type", Value: int32(1)}},
		bson.D{{Key: "address", Value: "FRIEND"}, {Key: "body", Value: "hi"}, {Key: "date", Value: int64(1700000000000)}, {Key: "type", Value: int32(1)}},
	})
	require.NoError(t, err)

	rows, err := NewMongoSource(db, "sms_garbled").QueryMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byAddress := map[string]int{}
	for i, r := range rows {
		byAddress[*r.Address] = i
	}

	garbled := rows[byAddress["AX-SBI"]]
	assert.Nil(t, garbled.Date)
	assert.Equal(t, "INR 20 credited", *garbled.Body)
	assert.Equal(t, int32(1), *garbled.Type)

	assert.Equal(t, int64(1700000000000), *rows[byAddress["FRIEND"]].Date)
}
