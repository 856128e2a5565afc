package models

import "time"

// MessageEnvelope is the record published to the broker.
type MessageEnvelope struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  Metadata               `json:"metadata"`
}

type Metadata struct {
	TraceID        string              `json:"trace_id,omitempty"`
	RequestID      string              `json:"request_id,omitempty"`
	Classification *ClassificationInfo `json:"classification,omitempty"`
}

type ClassificationInfo struct {
	Reason  string `json:"reason"`
	Keyword string `json:"keyword,omitempty"`
	Amount  string `json:"amount,omitempty"`
}
