// Package sms shapes inbox rows into the records returned to callers.
package sms

import "context"

// Row is one inbox entry as read from a message store. A nil field means the
// column was absent or null.
type Row struct {
	Address *string
	Body    *string
	Date    *int64
	Type    *int32
}

// NewRow builds a row with every column present.
func NewRow(address, body string, date int64, typ int32) Row {
	return Row{Address: &address, Body: &body, Date: &date, Type: &typ}
}

func (r Row) address() string {
	if r.Address == nil {
		return ""
	}
	return *r.Address
}

func (r Row) body() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}

func (r Row) date() int64 {
	if r.Date == nil {
		return 0
	}
	return *r.Date
}

func (r Row) messageType() int32 {
	if r.Type == nil {
		return 0
	}
	return *r.Type
}

// Message returns the full record for the row, defaulting absent columns.
func (r Row) Message() RawMessage {
	return RawMessage{
		Address: r.address(),
		Body:    r.body(),
		Date:    r.date(),
		Type:    r.messageType(),
	}
}

// Simplified returns the reduced record for the row.
func (r Row) Simplified() SimplifiedMessage {
	return SimplifiedMessage{
		Sender:    r.address(),
		Message:   r.body(),
		Timestamp: r.date(),
	}
}

// Record is either a RawMessage or a SimplifiedMessage.
type Record interface {
	record()
}

type RawMessage struct {
	Address string `json:"address"`
	Body    string `json:"body"`
	Date    int64  `json:"date"`
	Type    int32  `json:"type"`
}

func (RawMessage) record() {}

type SimplifiedMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func (SimplifiedMessage) record() {}

// Source reads inbox rows newest-first, at most rowCap of them.
type Source interface {
	QueryMessages(ctx context.Context, rowCap int) ([]Row, error)
	Name() string
}

// Exporter receives transaction listings after they are returned.
type Exporter interface {
	ExportTransactions(ctx context.Context, messages []RawMessage) error
}
