package sms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_MessageDefaults(t *testing.T) {
	body := "hello"
	row := Row{Body: &body}

	assert.Equal(t, RawMessage{Body: "hello"}, row.Message())
	assert.Equal(t, SimplifiedMessage{Message: "hello"}, row.Simplified())
}

func TestRow_MessageCopiesEveryColumn(t *testing.T) {
	row := NewRow("VK-HDFCBK", "Rs 500 debited", 1700000000000, 1)

	assert.Equal(t, RawMessage{
		Address: "VK-HDFCBK",
		Body:    "Rs 500 debited",
		Date:    1700000000000,
		Type:    1,
	}, row.Message())
	assert.Equal(t, SimplifiedMessage{
		Sender:    "VK-HDFCBK",
		Message:   "Rs 500 debited",
		Timestamp: 1700000000000,
	}, row.Simplified())
}

func TestRawMessage_JSONKeys(t *testing.T) {
	data, err := json.Marshal(Row{}.Message())
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"","body":"","date":0,"type":0}`, string(data))
}

func TestSimplifiedMessage_JSONKeys(t *testing.T) {
	data, err := json.Marshal(NewRow("AX-SBI", "hi", 42, 1).Simplified())
	require.NoError(t, err)
	assert.JSONEq(t, `{"sender":"AX-SBI","message":"hi","timestamp":42}`, string(data))
}

func TestRecord_Variants(t *testing.T) {
	records := []Record{RawMessage{}, SimplifiedMessage{}}
	for _, r := range records {
		switch r.(type) {
		case RawMessage, SimplifiedMessage:
		default:
			t.Fatalf("unexpected record type %T", r)
		}
	}
}
