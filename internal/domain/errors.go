package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	// ErrValidation covers malformed input: bad identifier shape, short
	// passwords, confirmation mismatch.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyRegistered is returned both by the fast-path lookup before a
	// code is issued and by the user store when an insert hits a uniqueness
	// constraint. The constraint is the authoritative signal.
	ErrAlreadyRegistered = errors.New("user already registered")

	// ErrVerificationNotStarted means no pending entry exists for the
	// identifier: either no code was requested, the entry's TTL elapsed, or
	// the code was already consumed.
	ErrVerificationNotStarted = errors.New("verification expired or not initiated")

	// ErrOTPExpired means a pending entry exists but its issue time is older
	// than the OTP window.
	ErrOTPExpired = errors.New("otp has expired")

	ErrInvalidOTP = errors.New("invalid otp")

	// ErrInvalidToken covers bad signature, expired token and malformed
	// payload alike; callers learn nothing about which check failed.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrStoreUnavailable is returned when a key-value backend fails. The
	// underlying cause is logged, never returned.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotificationFailed is returned when the mail dispatch fails. There
	// is no retry; the caller may request a fresh code.
	ErrNotificationFailed = errors.New("notification dispatch failed")

	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)
