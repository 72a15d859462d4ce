package upgates

import (
	"encoding/json"
	"time"
)

// Response is the envelope returned by Client for a successful exchange.
type Response struct {
	Success  bool             `json:"success"`
	Data     any              `json:"data,omitempty"`
	Error    string           `json:"error,omitempty"`
	Metadata ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata describes when and under which id a response was produced.
type ResponseMetadata struct {
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// formatResponse turns a raw 2xx body into a Response. A body that already
// carries a "success" discriminator is passed through; anything else is
// wrapped with a timestamp. Non-JSON bodies become a string payload.
func formatResponse(raw []byte, requestID string, now time.Time) *Response {
	meta := ResponseMetadata{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		RequestID: requestID,
	}

	if len(raw) == 0 {
		return &Response{Success: true, Metadata: meta}
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &Response{Success: true, Data: string(raw), Metadata: meta}
	}

	if obj, ok := payload.(map[string]any); ok {
		if _, has := obj["success"]; has {
			var passthrough Response
			if err := json.Unmarshal(raw, &passthrough); err == nil {
				if passthrough.Metadata.RequestID == "" {
					passthrough.Metadata.RequestID = requestID
				}
				return &passthrough
			}
		}
	}

	return &Response{Success: true, Data: payload, Metadata: meta}
}

// upstreamMessage extracts a "message" string from an error body, if present.
func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Message
}
