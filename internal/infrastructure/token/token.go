// Package token signs and verifies the HS256 JWTs used by the link-based
// verification flow and by login sessions.
package token

import (
	"errors"
	"time"

	"github.com/anant-society/membership-api/internal/config"
	"github.com/anant-society/membership-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// VerificationClaims is the self-contained claim carried by a registration
// link. Validity depends only on the signature and the elapsed time since
// GeneratedTime; there is no server-side record to revoke, short of
// rotating the signing key.
type VerificationClaims struct {
	RollNumber    string `json:"roll_number"`
	GeneratedTime int64  `json:"generated_time"` // Unix seconds
	jwt.RegisteredClaims
}

// SessionClaims is the payload of a login session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs. The signing keys are process-wide
// configuration loaded once at startup; rotating them invalidates all
// outstanding tokens.
type Provider struct {
	verificationKey []byte
	sessionKey      []byte
	linkTTL         time.Duration
	sessionTTL      time.Duration
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		verificationKey: []byte(cfg.RegistrationSecret),
		sessionKey:      []byte(cfg.SessionSecret),
		linkTTL:         cfg.LinkTTL,
		sessionTTL:      cfg.SessionTTL,
	}
}

// SignVerification issues a link token for rollNumber. issuedAt is a
// parameter rather than read from the clock so the token's whole validity
// window is fixed at the moment of issuance.
func (p *Provider) SignVerification(rollNumber string, issuedAt time.Time) (string, error) {
	claims := VerificationClaims{
		RollNumber:    rollNumber,
		GeneratedTime: issuedAt.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(p.linkTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.verificationKey)
}

// VerifyVerification returns the roll number and issuance time carried by a
// link token. Bad signature, expiry and malformed payload all collapse to
// domain.ErrInvalidToken so a caller cannot probe which check failed.
func (p *Provider) VerifyVerification(tokenStr string) (string, time.Time, error) {
	var claims VerificationClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.verificationKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid || claims.RollNumber == "" || claims.GeneratedTime == 0 {
		return "", time.Time{}, domain.ErrInvalidToken
	}
	return claims.RollNumber, time.Unix(claims.GeneratedTime, 0), nil
}

// SignSession issues a login session token for userID.
func (p *Provider) SignSession(userID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.sessionKey)
}

// VerifySession returns the user ID carried by a session token.
func (p *Provider) VerifySession(tokenStr string) (string, error) {
	var claims SessionClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.sessionKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid || claims.UserID == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.UserID, nil
}
