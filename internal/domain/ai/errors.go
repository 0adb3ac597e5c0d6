package ai

import "errors"

// ErrUnavailable indicates no AI provider is configured (missing API key).
var ErrUnavailable = errors.New("ai recommendation service not configured")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")
