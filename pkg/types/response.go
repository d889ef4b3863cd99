// Package types holds the JSON envelopes shared by every storefront endpoint.
package types

// SuccessEnvelope wraps a successful payload as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing view of a pkg/errors value. Code carries the
// stable error code (VALIDATION_ERROR, OUT_OF_RANGE, ...), never internals.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps a failure as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
