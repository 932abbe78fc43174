// Package registration drives the two-phase account creation flow:
// request a secret for an identifier, then redeem it and create the account.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anant-society/membership-api/internal/domain"
	"github.com/anant-society/membership-api/internal/infrastructure/keystore"
	"github.com/anant-society/membership-api/internal/pkg/hash"
	pkgid "github.com/anant-society/membership-api/internal/pkg/id"
	"github.com/anant-society/membership-api/internal/pkg/validate"
)

// State names a position in the registration flow. Failed attempts never
// persist a state: from the caller's point of view every rejected request
// leaves the flow in StateIdle.
type State int

const (
	StateIdle State = iota
	StateCodeRequested
	StateLinkIssued
	StateVerified
	StateCreated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCodeRequested:
		return "code_requested"
	case StateLinkIssued:
		return "link_issued"
	case StateVerified:
		return "verified"
	case StateCreated:
		return "created"
	}
	return "unknown"
}

type Service interface {
	// SendCode moves Idle -> CodeRequested: mails a one-time code to the
	// identifier's inbox and stores its digest for ten minutes.
	SendCode(ctx context.Context, req domain.SendCodeRequest) error

	// CreateUser moves CodeRequested -> Verified -> Created: consumes the
	// pending code and creates the account.
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)

	// IssueLink moves Idle -> LinkIssued: mails a signed registration link
	// for a roll number. No server-side secret is stored.
	IssueLink(ctx context.Context, req domain.IssueLinkRequest) error

	// RedeemLink moves LinkIssued -> Created: verifies the link token and
	// creates the account for the roll number it names.
	RedeemLink(ctx context.Context, req domain.RedeemLinkRequest) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRollNumber(ctx context.Context, rollNumber int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type mailer interface {
	SendEmail(to, subject, text, html string) error
}

type tokenSigner interface {
	SignVerification(rollNumber string, issuedAt time.Time) (string, error)
	VerifyVerification(token string) (string, time.Time, error)
}

type rosterLookup interface {
	Lookup(rollNumber int64) (domain.RosterEntry, bool)
}

type ServiceDeps struct {
	Users    userStore
	Mailer   mailer
	Roster   rosterLookup
	KeyStore keystore.Store
	Tokens   tokenSigner

	MailDomain string
	BaseURL    string
	OTPTTL     time.Duration
	LinkTTL    time.Duration
}

type service struct {
	users      userStore
	mailer     mailer
	roster     rosterLookup
	otp        *otpMethod
	link       *linkMethod
	mailDomain string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:      deps.Users,
		mailer:     deps.Mailer,
		roster:     deps.Roster,
		otp:        &otpMethod{store: deps.KeyStore, ttl: deps.OTPTTL, now: time.Now},
		link:       &linkMethod{tokens: deps.Tokens, baseURL: deps.BaseURL, ttl: deps.LinkTTL, now: time.Now},
		mailDomain: deps.MailDomain,
	}
}

func (s *service) SendCode(ctx context.Context, req domain.SendCodeRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	return s.begin(ctx, req.Identifier, s.otp, StateCodeRequested)
}

func (s *service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	hint, err := domain.ClassifyIdentifier(req.Identifier)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, hint, req.OTP, req.Name, req.Password, s.otp)
}

func (s *service) IssueLink(ctx context.Context, req domain.IssueLinkRequest) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	return s.begin(ctx, req.RollNumber, s.link, StateLinkIssued)
}

func (s *service) RedeemLink(ctx context.Context, req domain.RedeemLinkRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	return s.complete(ctx, domain.Identifier{}, req.Token, req.Name, req.Password, s.link)
}

// begin runs the Idle -> CodeRequested / LinkIssued half of the flow:
// classify, reject identifiers that already have an account, issue the
// secret, dispatch the notification.
func (s *service) begin(ctx context.Context, rawID string, method VerificationMethod, issued State) error {
	ident, err := domain.ClassifyIdentifier(rawID)
	if err != nil {
		return err
	}

	// Fast path only: the users table's uniqueness constraints remain the
	// authoritative check at creation time.
	existing, err := s.lookupExisting(ctx, ident)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrAlreadyRegistered
	}

	ch, err := method.Issue(ctx, ident)
	if err != nil {
		return err
	}

	if err := s.mailer.SendEmail(ident.NotificationAddress(s.mailDomain), ch.Subject, ch.Text, ch.HTML); err != nil {
		slog.Error("verification mail dispatch", "identifier", ident.Key(), "err", err)
		return domain.ErrNotificationFailed
	}

	slog.Debug("registration transition", "from", StateIdle, "to", issued, "identifier", ident.Key())
	return nil
}

// complete runs the -> Verified -> Created half: redeem the proof, hash the
// password, enrich roll-number accounts from the roster, create the account.
func (s *service) complete(ctx context.Context, hint domain.Identifier, proof, name, password string, method VerificationMethod) (*domain.User, error) {
	ident, err := method.Redeem(ctx, hint, proof)
	if err != nil {
		return nil, err
	}
	slog.Debug("registration transition", "to", StateVerified, "identifier", ident.Key())

	digest, err := hash.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		UserID:       pkgid.New(),
		Name:         name,
		PasswordHash: digest,
	}
	switch ident.Kind {
	case domain.KindEmail:
		email := ident.Email
		u.Email = &email
	case domain.KindRollNumber:
		roll := ident.RollNumber
		u.RollNumber = &roll
		s.enrich(u, roll)
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	slog.Debug("registration transition", "to", StateCreated, "identifier", ident.Key())
	return u, nil
}

func (s *service) lookupExisting(ctx context.Context, ident domain.Identifier) (*domain.User, error) {
	var u *domain.User
	var err error
	switch ident.Kind {
	case domain.KindEmail:
		u, err = s.users.GetByEmail(ctx, ident.Email)
	case domain.KindRollNumber:
		u, err = s.users.GetByRollNumber(ctx, ident.RollNumber)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// enrich fills the optional profile fields from the roster. A miss is not
// fatal; the account keeps its base fields.
func (s *service) enrich(u *domain.User, roll int64) {
	e, ok := s.roster.Lookup(roll)
	if !ok {
		return
	}
	if e.Batch != "" {
		u.Batch = &e.Batch
	}
	if e.Branch != "" {
		u.Branch = &e.Branch
	}
	if e.Position != "" {
		u.Position = &e.Position
	}
	if e.ClubDept != "" {
		u.ClubDept = &e.ClubDept
	}
}
