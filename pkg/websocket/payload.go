package websocket

import (
	"encoding/json"
	"fmt"

	"pulsetrack-go/pkg/services"
)

// dataString reads a string field from a message payload, returning ""
// when the field is missing or not a string.
func dataString(msg *Message, key string) string {
	if msg.Data == nil {
		return ""
	}
	value, _ := msg.Data[key].(string)
	return value
}

// decodeActivityInput converts a raw message payload into a typed
// activity input. Timestamps are expected in RFC 3339.
func decodeActivityInput(data map[string]interface{}) (services.RecordActivityInput, error) {
	var input services.RecordActivityInput

	raw, err := json.Marshal(data)
	if err != nil {
		return input, fmt.Errorf("invalid activity payload: %w", err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("invalid activity payload: %w", err)
	}
	return input, nil
}
