package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestIncClassified(t *testing.T) {
	before := testutil.ToFloat64(ClassifiedTotal.WithLabelValues("transaction"))
	IncClassified(true)
	assert.Equal(t, before+1, testutil.ToFloat64(ClassifiedTotal.WithLabelValues("transaction")))

	before = testutil.ToFloat64(ClassifiedTotal.WithLabelValues("other"))
	IncClassified(false)
	assert.Equal(t, before+1, testutil.ToFloat64(ClassifiedTotal.WithLabelValues("other")))
}

func TestObserveMethodCall(t *testing.T) {
	before := testutil.ToFloat64(MethodCallsTotal.WithLabelValues("readSms", "ok"))
	ObserveMethodCall("readSms", "ok", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(MethodCallsTotal.WithLabelValues("readSms", "ok")))
}

func TestAddMessagesReturned(t *testing.T) {
	before := testutil.ToFloat64(MessagesReturnedTotal.WithLabelValues("simple"))
	AddMessagesReturned("simple", 7)
	assert.Equal(t, before+7, testutil.ToFloat64(MessagesReturnedTotal.WithLabelValues("simple")))
}
