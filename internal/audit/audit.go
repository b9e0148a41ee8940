package audit

import (
	"fmt"
	"sync"
)

var (
	// globalWriter is the default audit writer.
	globalWriter Writer = NopWriter{}
	globalMu     sync.RWMutex

	// enabled tracks whether audit logging is active.
	enabled bool
)

// Init initializes the global audit logger with the given writer.
// Must be called before any audit events are logged.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
		return nil
	}

	globalWriter = w
	enabled = true
	return nil
}

// InitFile initializes the global audit logger with a file writer.
// This is a convenience function for the common case.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}

	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}

	return Init(w)
}

// Close closes the global audit writer.
// Should be called when the application exits.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWriter != nil {
		err := globalWriter.Close()
		globalWriter = NopWriter{}
		enabled = false
		return err
	}
	return nil
}

// Enabled returns whether audit logging is active.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes an audit event to the global writer.
//
// IMPORTANT: If audit logging is enabled and this returns an error,
// the calling operation SHOULD fail. Audit logs are critical for
// compliance and security.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// MustLog writes an audit event and returns an error suitable for
// failing the parent operation if audit logging fails.
func MustLog(event *Event) error {
	if err := Log(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// LogKeyFetched logs a public-key fetch from the remote authority.
func LogKeyFetched(backend, keyID string, success bool, reason string) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	event := NewEvent(EventKeyFetched, result).
		WithObject(Object{
			Type:  "key",
			KeyID: keyID,
		}).
		WithContext(Context{
			Backend: backend,
			Reason:  reason,
		})

	return Log(event)
}

// LogCSRSigned logs a remote signing call for a CSR.
func LogCSRSigned(backend, keyID, subject, algorithm string, success bool, reason string) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	event := NewEvent(EventCSRSigned, result).
		WithObject(Object{
			Type:    "csr",
			KeyID:   keyID,
			Subject: subject,
		}).
		WithContext(Context{
			Backend:   backend,
			Algorithm: algorithm,
			Reason:    reason,
		})

	return Log(event)
}

// LogCSRServed logs a CSR delivered through the REST API.
func LogCSRServed(backend, keyID, subject string, success bool, reason string) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	event := NewEvent(EventCSRServed, result).
		WithObject(Object{
			Type:    "csr",
			KeyID:   keyID,
			Subject: subject,
		}).
		WithContext(Context{
			Backend: backend,
			Reason:  reason,
		})

	return Log(event)
}

// LogCSRCreated logs a completed CSR build.
func LogCSRCreated(backend, keyID, subject, keySpec string, success bool, reason string) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	event := NewEvent(EventCSRCreated, result).
		WithObject(Object{
			Type:    "csr",
			KeyID:   keyID,
			Subject: subject,
		}).
		WithContext(Context{
			Backend: backend,
			KeySpec: keySpec,
			Reason:  reason,
		})

	return Log(event)
}
