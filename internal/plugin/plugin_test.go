package plugin

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smskit/internal/classifier"
	"smskit/internal/logger"
	"smskit/internal/permission"
	"smskit/internal/sms"
	apperrors "smskit/pkg/errors"
)

type countingSource struct {
	mu    sync.Mutex
	rows  []sms.Row
	calls int
}

func (s *countingSource) QueryMessages(_ context.Context, rowCap int) ([]sms.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.rows) > rowCap {
		return s.rows[:rowCap], nil
	}
	return s.rows, nil
}

func (s *countingSource) Name() string { return "counting" }

type fixture struct {
	plugin  *Plugin
	source  *countingSource
	store   *permission.MemoryStore
	binding *permission.Binding
	flow    *permission.Flow
}

func newFixture(t *testing.T, auto string) *fixture {
	t.Helper()

	src := &countingSource{rows: []sms.Row{
		sms.NewRow("VK-HDFCBK", "Rs 500 debited from a/c", 4, 1),
		sms.NewRow("FRIEND", "See you at 5", 3, 1),
		sms.NewRow("AX-ICICI", "INR 20 credited", 2, 1),
		sms.NewRow("OTP", "Code 1234", 1, 1),
	}}
	svc, err := sms.NewService(src, logger.NopLogger())
	require.NoError(t, err)

	store := permission.NewMemoryStore()
	host := permission.NewStoreHost(store, permission.StoreHostOptions{
		Platform:           "Android 14",
		RuntimePermissions: true,
		AutoDecision:       auto,
	}, logger.NopLogger())
	binding := permission.NewBinding(host)
	flow := permission.NewFlow(binding, "read_sms", time.Second, logger.NopLogger())

	return &fixture{
		plugin:  New(svc, permission.NewGate(binding), flow, PlatformVersion("Android", "14"), logger.NopLogger()),
		source:  src,
		store:   store,
		binding: binding,
		flow:    flow,
	}
}

func (f *fixture) grant(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), "read_sms", permission.Grant{Granted: true}))
}

func TestInvoke_GetPlatformVersion(t *testing.T) {
	f := newFixture(t, "")
	got, err := f.plugin.Invoke(context.Background(), MethodGetPlatformVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, "Android 14", got)
}

func TestPlatformVersion(t *testing.T) {
	assert.Equal(t, "Android 14", PlatformVersion("Android", "14"))
	assert.Equal(t, "Android", PlatformVersion("Android", ""))
}

func TestInvoke_CheckSmsPermission(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	got, err := f.plugin.Invoke(ctx, MethodCheckSmsPermission, nil)
	require.NoError(t, err)
	assert.Equal(t, "notDetermined", got)

	f.grant(t)
	got, err = f.plugin.Invoke(ctx, MethodCheckSmsPermission, nil)
	require.NoError(t, err)
	assert.Equal(t, "granted", got)

	f.binding.Detach()
	got, err = f.plugin.Invoke(ctx, MethodCheckSmsPermission, nil)
	require.NoError(t, err)
	assert.Equal(t, "notDetermined", got)
}

func TestInvoke_GatedMethodsRequireGrant(t *testing.T) {
	gated := []struct {
		method string
		args   Args
	}{
		{MethodReadSms, nil},
		{MethodGetSimpleSms, Args{"limit": float64(5)}},
		{MethodGetTransactionSms, nil},
		{MethodQuerySms, Args{"filter": "true"}},
	}

	for _, tt := range gated {
		t.Run(tt.method, func(t *testing.T) {
			f := newFixture(t, "")
			got, err := f.plugin.Invoke(context.Background(), tt.method, tt.args)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, apperrors.IsPermissionDenied(err))
			assert.Zero(t, f.source.calls, "store must not be read without a grant")
		})
	}
}

func TestInvoke_DeniedAfterRefusal(t *testing.T) {
	f := newFixture(t, "deny")
	ctx := context.Background()

	state, err := f.plugin.Invoke(ctx, MethodRequestSmsPermission, nil)
	require.NoError(t, err)
	assert.Equal(t, "denied", state)

	check, err := f.plugin.Invoke(ctx, MethodCheckSmsPermission, nil)
	require.NoError(t, err)
	assert.Equal(t, "denied", check)

	_, err = f.plugin.Invoke(ctx, MethodReadSms, nil)
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestInvoke_ReadSms(t *testing.T) {
	f := newFixture(t, "")
	f.grant(t)

	got, err := f.plugin.Invoke(context.Background(), MethodReadSms, nil)
	require.NoError(t, err)

	msgs, ok := got.([]sms.RawMessage)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	assert.Equal(t, "VK-HDFCBK", msgs[0].Address)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"address":"VK-HDFCBK"`)
}

func TestInvoke_GetSimpleSms(t *testing.T) {
	f := newFixture(t, "")
	f.grant(t)
	ctx := context.Background()

	got, err := f.plugin.Invoke(ctx, MethodGetSimpleSms, Args{"limit": float64(2)})
	require.NoError(t, err)
	msgs := got.([]sms.SimplifiedMessage)
	require.Len(t, msgs, 2)
	assert.Equal(t, sms.SimplifiedMessage{Sender: "VK-HDFCBK", Message: "Rs 500 debited from a/c", Timestamp: 4}, msgs[0])

	got, err = f.plugin.Invoke(ctx, MethodGetSimpleSms, nil)
	require.NoError(t, err)
	assert.Len(t, got.([]sms.SimplifiedMessage), 4)

	got, err = f.plugin.Invoke(ctx, MethodGetSimpleSms, Args{"limit": float64(0)})
	require.NoError(t, err)
	assert.Empty(t, got.([]sms.SimplifiedMessage))

	got, err = f.plugin.Invoke(ctx, MethodGetSimpleSms, Args{"limit": float64(-1)})
	require.NoError(t, err)
	assert.Len(t, got.([]sms.SimplifiedMessage), 4)

	_, err = f.plugin.Invoke(ctx, MethodGetSimpleSms, Args{"limit": "ten"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestInvoke_GetTransactionSms(t *testing.T) {
	f := newFixture(t, "")
	f.grant(t)

	got, err := f.plugin.Invoke(context.Background(), MethodGetTransactionSms, nil)
	require.NoError(t, err)

	msgs := got.([]sms.RawMessage)
	require.Len(t, msgs, 2)
	assert.Equal(t, "VK-HDFCBK", msgs[0].Address)
	assert.Equal(t, "AX-ICICI", msgs[1].Address)
}

func TestInvoke_QuerySms(t *testing.T) {
	f := newFixture(t, "")
	f.grant(t)
	ctx := context.Background()

	got, err := f.plugin.Invoke(ctx, MethodQuerySms, Args{"filter": `address.startsWith("AX-")`})
	require.NoError(t, err)
	msgs := got.([]sms.RawMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, "AX-ICICI", msgs[0].Address)

	_, err = f.plugin.Invoke(ctx, MethodQuerySms, nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.plugin.Invoke(ctx, MethodQuerySms, Args{"filter": "date"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestInvoke_ClassifySmsIsNotGated(t *testing.T) {
	f := newFixture(t, "")

	got, err := f.plugin.Invoke(context.Background(), MethodClassifySms, Args{"body": "INR2500 received"})
	require.NoError(t, err)

	verdict := got.(classifier.Verdict)
	assert.True(t, verdict.IsTransaction)
	assert.Equal(t, classifier.ReasonKeyword, verdict.Reason)
	assert.Zero(t, f.source.calls)

	_, err = f.plugin.Invoke(context.Background(), MethodClassifySms, Args{"body": 12})
	assert.True(t, apperrors.IsValidation(err))
}

func TestInvoke_RequestSmsPermission_NoActivity(t *testing.T) {
	f := newFixture(t, "grant")
	f.binding.Detach()

	_, err := f.plugin.Invoke(context.Background(), MethodRequestSmsPermission, nil)
	require.Error(t, err)
	assert.Equal(t, "NO_ACTIVITY", apperrors.Code(err))
}

func TestInvoke_RequestSmsPermission_Resolved(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	done := make(chan interface{}, 1)
	go func() {
		got, err := f.plugin.Invoke(ctx, MethodRequestSmsPermission, nil)
		assert.NoError(t, err)
		done <- got
	}()

	var handle *permission.Handle
	require.Eventually(t, func() bool {
		h, ok := f.flow.Pending()
		handle = h
		return ok
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, f.flow.Resolve(ctx, handle.ID(), true))
	assert.Equal(t, "granted", <-done)

	got, err := f.plugin.Invoke(ctx, MethodReadSms, nil)
	require.NoError(t, err)
	assert.Len(t, got.([]sms.RawMessage), 4)
}

func TestInvoke_UnknownMethod(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.plugin.Invoke(context.Background(), "sendSms", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotImplemented(err))
}

func TestMethods(t *testing.T) {
	assert.Equal(t, []string{
		"checkSmsPermission",
		"classifySms",
		"getPlatformVersion",
		"getSimpleSms",
		"getTransactionSms",
		"querySms",
		"readSms",
		"requestSmsPermission",
	}, Methods())
}

func TestArgs_Int(t *testing.T) {
	args := Args{
		"f":    float64(3),
		"frac": 2.5,
		"i":    7,
		"n":    json.Number("9"),
		"null": nil,
	}

	v, err := args.Int("f", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = args.Int("i", 1)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = args.Int("n", 1)
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	v, err = args.Int("null", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	v, err = args.Int("missing", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	_, err = args.Int("frac", 1)
	assert.True(t, apperrors.IsValidation(err))
}
