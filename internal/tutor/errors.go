package tutor

import (
	"encoding/json"
	"fmt"
)

// NetworkError indicates the request did not complete with a success status:
// the connection failed, the context ended, or the service answered non-2xx.
type NetworkError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tutor service %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("tutor service %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError indicates the service answered, but the body could not be
// parsed into the expected shape.
type ProtocolError struct {
	Endpoint string
	Body     json.RawMessage
	Err      error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("invalid response from %s: %v", e.Endpoint, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
