// Package audit provides secure audit logging for CSR operations.
//
// Audit logs are separate from technical logs and designed for:
//   - Compliance trails of remote key usage
//   - SIEM integration
//   - Tamper evidence via cryptographic hash chaining
//
// Key principles:
//   - Audit failure = Operation failure
//   - Never log secrets (PINs, credentials) — this system holds no private keys
//   - All timestamps in UTC
//   - Hash chain for integrity verification
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// EventType represents the category of audit event.
type EventType string

const (
	// Remote key access events
	EventKeyFetched EventType = "KEY_FETCHED"

	// CSR lifecycle events
	EventCSRCreated EventType = "CSR_CREATED"
	EventCSRSigned  EventType = "CSR_SIGNED"
	EventCSRServed  EventType = "CSR_SERVED"
)

// Result represents the outcome of an audited operation.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Actor represents who performed the action.
type Actor struct {
	Type string `json:"type"`           // "user", "system", "service"
	ID   string `json:"id"`             // username or service identifier
	Host string `json:"host,omitempty"` // hostname where action occurred
}

// Object represents what was acted upon.
type Object struct {
	Type    string `json:"type"`              // "csr", "key"
	KeyID   string `json:"key_id,omitempty"`  // remote key identifier
	Subject string `json:"subject,omitempty"` // request subject DN
}

// Context provides additional details about the operation.
type Context struct {
	Backend   string `json:"backend,omitempty"`   // signing authority backend
	KeySpec   string `json:"key_spec,omitempty"`  // remote key spec
	Algorithm string `json:"algorithm,omitempty"` // signing algorithm
	Reason    string `json:"reason,omitempty"`    // failure reason
}

// Event represents a single audit log entry.
type Event struct {
	EventType EventType `json:"event_type"`
	Timestamp string    `json:"timestamp"` // RFC3339 UTC
	Actor     Actor     `json:"actor"`
	Object    Object    `json:"object"`
	Context   Context   `json:"context,omitempty"`
	Result    Result    `json:"result"`
	HashPrev  string    `json:"hash_prev"` // SHA-256 hash of previous event
	Hash      string    `json:"hash"`      // SHA-256 hash of this event
}

// NewEvent creates a new audit event with current timestamp and actor info.
func NewEvent(eventType EventType, result Result) *Event {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows
	}
	if username == "" {
		username = "unknown"
	}

	return &Event{
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Actor: Actor{
			Type: "user",
			ID:   username,
			Host: hostname,
		},
		Result: result,
	}
}

// WithObject sets the object field.
func (e *Event) WithObject(obj Object) *Event {
	e.Object = obj
	return e
}

// WithContext sets the context field.
func (e *Event) WithContext(ctx Context) *Event {
	e.Context = ctx
	return e
}

// WithActor overrides the default actor.
func (e *Event) WithActor(actor Actor) *Event {
	e.Actor = actor
	return e
}

// Validate checks that required fields are present.
func (e *Event) Validate() error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if e.Actor.Type == "" || e.Actor.ID == "" {
		return fmt.Errorf("actor type and id are required")
	}
	if e.Result == "" {
		return fmt.Errorf("result is required")
	}
	return nil
}

// CanonicalJSON returns the event as canonical JSON for hashing.
// Excludes the Hash field to allow hash calculation.
func (e *Event) CanonicalJSON() ([]byte, error) {
	type eventForHash struct {
		EventType EventType `json:"event_type"`
		Timestamp string    `json:"timestamp"`
		Actor     Actor     `json:"actor"`
		Object    Object    `json:"object"`
		Context   Context   `json:"context,omitempty"`
		Result    Result    `json:"result"`
		HashPrev  string    `json:"hash_prev"`
	}

	canonical := eventForHash{
		EventType: e.EventType,
		Timestamp: e.Timestamp,
		Actor:     e.Actor,
		Object:    e.Object,
		Context:   e.Context,
		Result:    e.Result,
		HashPrev:  e.HashPrev,
	}

	return json.Marshal(canonical)
}

// JSON returns the full event as JSON.
func (e *Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}
