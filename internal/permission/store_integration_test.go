//go:build integration

package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smskit/internal/testinfra"
)

func TestRedisStore(t *testing.T) {
	client := testinfra.Redis(t)
	ctx := context.Background()
	store := NewRedisStore(client)

	g, err := store.Get(ctx, "read_sms")
	require.NoError(t, err)
	assert.Equal(t, Grant{}, g)

	require.NoError(t, store.Set(ctx, "read_sms", Grant{Granted: false, Rationale: true}))
	g, err = store.Get(ctx, "read_sms")
	require.NoError(t, err)
	assert.Equal(t, Grant{Rationale: true}, g)

	val, err := client.Get(ctx, "smskit:permission:read_sms:rationale").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	host := newStoreHost(store, "")
	require.NoError(t, host.Record(ctx, true))
	assert.Equal(t, Granted, NewGate(NewBinding(host)).Check(ctx))
}

func TestRedisStore_ContextCancellation(t *testing.T) {
	client := testinfra.Redis(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedisStore(client).Get(ctx, "read_sms")
	require.Error(t, err)
}
