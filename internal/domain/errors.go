package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Guard rejections. Each one blocks the write it was raised for.
var (
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrRateLimited          = errors.New("rate limited")
	ErrOfferFull            = errors.New("offer full")
	ErrOfferClosed          = errors.New("offer closed")
	ErrUserQuotaExceeded    = errors.New("user quota exceeded")
	ErrInvalidRange         = errors.New("invalid range")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ErrUnknownPayloadKind is returned when a stored payload carries a kind outside the closed set.
var ErrUnknownPayloadKind = errors.New("unknown notification payload kind")
