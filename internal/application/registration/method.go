package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/anant-society/membership-api/internal/domain"
	"github.com/anant-society/membership-api/internal/infrastructure/keystore"
	"github.com/anant-society/membership-api/internal/pkg/hash"
	"github.com/anant-society/membership-api/internal/pkg/otp"
)

// Challenge is the notification content a VerificationMethod wants delivered
// to the identifier's inbox.
type Challenge struct {
	Subject string
	Text    string
	HTML    string // optional
}

// A VerificationMethod issues a challenge for an identifier and later
// redeems the caller's proof. The orchestrator runs the same state machine
// over either method: the stored-OTP variant and the signed-link variant
// differ only in what the proof is and where its state lives.
type VerificationMethod interface {
	// Issue generates a fresh secret for the identifier and returns the
	// notification carrying it. Reissuing replaces any outstanding secret.
	Issue(ctx context.Context, ident domain.Identifier) (Challenge, error)

	// Redeem validates proof and returns the verified identifier. hint is
	// the identifier the caller claims; the link method ignores it because
	// the proof itself names the identity.
	Redeem(ctx context.Context, hint domain.Identifier, proof string) (domain.Identifier, error)
}

// otpMethod stores a bcrypt digest of a 6-digit code in the key-value store
// under the identifier, with the store's TTL as the first expiry guard and
// an issued-at recheck at redeem time as the second. The second guard is
// what expires entries on the durable backend, which has no TTL of its own.
type otpMethod struct {
	store keystore.Store
	ttl   time.Duration
	now   func() time.Time
}

func (m *otpMethod) Issue(ctx context.Context, ident domain.Identifier) (Challenge, error) {
	code, err := otp.New()
	if err != nil {
		return Challenge{}, err
	}
	digest, err := hash.Hash(code)
	if err != nil {
		return Challenge{}, err
	}
	pending := domain.PendingVerification{
		HashedSecret: digest,
		IssuedAt:     m.now().Unix(),
	}
	payload, err := pending.Encode()
	if err != nil {
		return Challenge{}, err
	}
	// Set is an upsert: a repeated send-code replaces the previous pending
	// entry, so at most one code is redeemable per identifier.
	if err := m.store.Set(ctx, ident.Key(), payload, m.ttl); err != nil {
		return Challenge{}, err
	}
	return Challenge{
		Subject: "Anant Registration: Your Verification Code",
		Text: fmt.Sprintf("Your verification code is %s. It will expire in %d minutes.",
			code, int(m.ttl.Minutes())),
	}, nil
}

func (m *otpMethod) Redeem(ctx context.Context, hint domain.Identifier, proof string) (domain.Identifier, error) {
	payload, err := m.store.Get(ctx, hint.Key())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identifier{}, domain.ErrVerificationNotStarted
	}
	if err != nil {
		return domain.Identifier{}, err
	}
	pending, err := domain.DecodePending(payload)
	if err != nil {
		slog.Warn("undecodable pending entry", "key", hint.Key(), "err", err)
		return domain.Identifier{}, domain.ErrVerificationNotStarted
	}
	if pending.ExpiredAt(m.now(), m.ttl) {
		return domain.Identifier{}, domain.ErrOTPExpired
	}
	if !hash.Compare(proof, pending.HashedSecret) {
		return domain.Identifier{}, domain.ErrInvalidOTP
	}
	// Single consumption: the entry must be gone before account creation
	// proceeds, otherwise the same code could be replayed.
	if err := m.store.Delete(ctx, hint.Key()); err != nil {
		return domain.Identifier{}, err
	}
	return hint, nil
}

// linkMethod signs a self-contained token naming the roll number; no
// server-side record exists, so the token stays redeemable until its window
// closes, even if a link is requested twice.
type linkMethod struct {
	tokens  tokenSigner
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func (m *linkMethod) Issue(_ context.Context, ident domain.Identifier) (Challenge, error) {
	if ident.Kind != domain.KindRollNumber {
		return Challenge{}, fmt.Errorf("verification links are issued for roll numbers only: %w", domain.ErrValidation)
	}
	tok, err := m.tokens.SignVerification(ident.Key(), m.now())
	if err != nil {
		return Challenge{}, err
	}
	link := fmt.Sprintf("%s/register?token=%s", m.baseURL, url.QueryEscape(tok))
	minutes := int(m.ttl.Minutes())
	return Challenge{
		Subject: "Verify Registration for Anant",
		Text: fmt.Sprintf("Click the following link to verify your identity and complete registration:\n\n%s\n\nThis link is valid for %d minutes.\n\nThank You",
			link, minutes),
		HTML: fmt.Sprintf(`<p>Click the following link to verify your identity and complete registration:</p><p><a href="%s">%s</a></p><p>This link is valid for %d minutes.</p><p>Thank You</p>`,
			link, link, minutes),
	}, nil
}

func (m *linkMethod) Redeem(_ context.Context, _ domain.Identifier, proof string) (domain.Identifier, error) {
	roll, _, err := m.tokens.VerifyVerification(proof)
	if err != nil {
		return domain.Identifier{}, err
	}
	ident, err := domain.ClassifyIdentifier(roll)
	if err != nil || ident.Kind != domain.KindRollNumber {
		return domain.Identifier{}, domain.ErrInvalidToken
	}
	return ident, nil
}
