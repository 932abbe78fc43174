package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// IdentifierKind discriminates the two accepted identifier shapes.
type IdentifierKind int

const (
	KindEmail IdentifierKind = iota
	KindRollNumber
)

// Identifier is a classified user-supplied identifier: an email address or
// an institute roll number. Classification is total and exclusive; anything
// that is neither shape is rejected before it reaches the registration flow.
type Identifier struct {
	Kind       IdentifierKind
	Email      string
	RollNumber int64

	raw string
}

// ClassifyIdentifier classifies a raw identifier string. A string containing
// "@" is an email address; an all-digit string is a roll number. Everything
// else fails with ErrValidation, as does a digit string too large to parse.
func ClassifyIdentifier(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, fmt.Errorf("identifier is required: %w", ErrValidation)
	}
	if strings.Contains(raw, "@") {
		return Identifier{Kind: KindEmail, Email: raw, raw: raw}, nil
	}
	if !allDigits(raw) {
		return Identifier{}, fmt.Errorf("invalid roll number: %w", ErrValidation)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Identifier{}, fmt.Errorf("invalid roll number: %w", ErrValidation)
	}
	return Identifier{Kind: KindRollNumber, RollNumber: n, raw: raw}, nil
}

// NotificationAddress derives the inbox for this identifier: the address
// itself for emails, or the institute inbox for roll numbers.
func (id Identifier) NotificationAddress(mailDomain string) string {
	if id.Kind == KindEmail {
		return id.Email
	}
	return id.raw + "@" + mailDomain
}

// Key returns the string under which pending verifications for this
// identifier are stored. At most one pending entry exists per key.
func (id Identifier) Key() string {
	return id.raw
}

func (id Identifier) String() string {
	return id.raw
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
