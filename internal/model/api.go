package model

import "time"

// APIResponse is the standard response envelope for all HTTP API responses.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeSessionExpired = "SESSION_EXPIRED"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeUpstream       = "UPSTREAM_ERROR"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// SetDraftFieldRequest is the request body for PATCH /v1/filters/draft.
type SetDraftFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ChangePageRequest is the request body for POST /v1/page.
type ChangePageRequest struct {
	Page int `json:"page"`
}

// UpdateTagsRequest is the request body for PATCH /v1/reviews/{id}/tags.
type UpdateTagsRequest struct {
	Performance *Performance `json:"performance,omitempty"`
	Accuracy    *Accuracy    `json:"accuracy,omitempty"`
	Sentiment   *Sentiment   `json:"sentiment,omitempty"`
}

// AuthTokenRequest is the request body for POST /auth/token.
type AuthTokenRequest struct {
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	APIKey string `json:"api_key"`
}

// AuthTokenResponse is the response for POST /auth/token.
type AuthTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Source  string `json:"source"`
	Uptime  int64  `json:"uptime_seconds"`
}
