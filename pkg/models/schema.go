package models

import "fmt"

// RecordPayloadKeys are the inbox columns every exported record carries.
var RecordPayloadKeys = []string{"address", "body", "date", "type"}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid envelope field %q: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidateMessageEnvelope checks the fields every published envelope needs.
func ValidateMessageEnvelope(msg *MessageEnvelope) error {
	switch {
	case msg == nil:
		return invalid("envelope", "is nil")
	case msg.ID == "":
		return invalid("id", "is required")
	case msg.Source == "":
		return invalid("source", "is required")
	case msg.Timestamp.IsZero():
		return invalid("timestamp", "is required")
	case msg.Payload == nil:
		return invalid("payload", "is nil")
	}
	return nil
}

// ValidateRecordPayload additionally requires every inbox column in the
// payload. Null columns are present with their default value.
func ValidateRecordPayload(msg *MessageEnvelope) error {
	if err := ValidateMessageEnvelope(msg); err != nil {
		return err
	}
	for _, key := range RecordPayloadKeys {
		if _, ok := msg.Payload[key]; !ok {
			return invalid("payload."+key, "is missing")
		}
	}
	return nil
}
