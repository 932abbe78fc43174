package domain

import (
	"encoding/json"
	"time"
)

// PendingVerification is the ephemeral record stored under an identifier
// while an OTP is outstanding. It is created on send-code, consumed exactly
// once on create-user, and evicted by the store's TTL if never consumed.
type PendingVerification struct {
	HashedSecret string `json:"hashed_secret"`
	IssuedAt     int64  `json:"issued_at"` // Unix seconds
}

// Encode serializes the record for key-value storage.
func (p PendingVerification) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodePending parses a stored record.
func DecodePending(s string) (PendingVerification, error) {
	var p PendingVerification
	err := json.Unmarshal([]byte(s), &p)
	return p, err
}

// ExpiredAt reports whether the record is older than ttl at the given time.
// This is checked at verify time even on backends with native TTL: the
// durable backend has no TTL at all, and on the cache backend eviction may
// lag the deadline.
func (p PendingVerification) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.Unix(p.IssuedAt, 0)) > ttl
}
