// Package dto provides Data Transfer Objects for the REST API.
package dto

// CSRCreateRequest represents a certification request creation call.
// Key settings (backend, key, key spec) are fixed by the server
// configuration; the caller only controls the subject.
type CSRCreateRequest struct {
	// CommonName is the subject common name.
	CommonName string `json:"common_name"`

	// CountryCode is the subject country code (two letters).
	CountryCode string `json:"country_code"`
}

// CSRCreateResponse represents a successfully created certification request.
type CSRCreateResponse struct {
	// CSR is the PEM-encoded certification request.
	CSR string `json:"csr"`

	// Subject is the subject distinguished name, e.g. "CN=device,C=FR".
	Subject string `json:"subject"`

	// KeyID identifies the remote key that signed the request.
	KeyID string `json:"key_id"`

	// SignatureAlgorithm names the signature algorithm, e.g. "ECDSA_SHA_256".
	SignatureAlgorithm string `json:"signature_algorithm"`
}

// APIError represents a standardized error response.
type APIError struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details provides additional context about the error.
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	// Version is the server version.
	Version string `json:"version"`

	// Backend names the remote signing backend in use.
	Backend string `json:"backend,omitempty"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	// Ready indicates if the server is ready to accept requests.
	Ready bool `json:"ready"`

	// Checks lists individual readiness checks.
	Checks map[string]bool `json:"checks,omitempty"`
}
