package registration

import (
	"context"
	"testing"
	"time"

	"github.com/anant-society/membership-api/internal/domain"
	"github.com/anant-society/membership-api/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByRollNumber(ctx context.Context, rollNumber int64) (*domain.User, error) {
	args := m.Called(ctx, rollNumber)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, text, html string) error {
	return m.Called(to, subject, text, html).Error(0)
}

type mockKeyStore struct{ mock.Mock }

func (m *mockKeyStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *mockKeyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *mockKeyStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockTokenSigner struct{ mock.Mock }

func (m *mockTokenSigner) SignVerification(rollNumber string, issuedAt time.Time) (string, error) {
	args := m.Called(rollNumber, issuedAt)
	return args.String(0), args.Error(1)
}
func (m *mockTokenSigner) VerifyVerification(token string) (string, time.Time, error) {
	args := m.Called(token)
	t, _ := args.Get(1).(time.Time)
	return args.String(0), t, args.Error(2)
}

type mockRoster struct{ mock.Mock }

func (m *mockRoster) Lookup(rollNumber int64) (domain.RosterEntry, bool) {
	args := m.Called(rollNumber)
	return args.Get(0).(domain.RosterEntry), args.Bool(1)
}

// --- builder ---

func newService(us *mockUserStore, ks *mockKeyStore, ml *mockMailer, ts *mockTokenSigner, ro *mockRoster) Service {
	return NewService(ServiceDeps{
		Users:      us,
		Mailer:     ml,
		Roster:     ro,
		KeyStore:   ks,
		Tokens:     ts,
		MailDomain: "nitkkr.ac.in",
		BaseURL:    "https://anant.example",
		OTPTTL:     10 * time.Minute,
		LinkTTL:    15 * time.Minute,
	})
}

func pendingPayload(t *testing.T, code string, issuedAt time.Time) string {
	t.Helper()
	digest, err := hash.Hash(code)
	require.NoError(t, err)
	p := domain.PendingVerification{HashedSecret: digest, IssuedAt: issuedAt.Unix()}
	s, err := p.Encode()
	require.NoError(t, err)
	return s
}

// --- SendCode ---

func TestSendCode_RollNumberHappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByRollNumber", mock.Anything, int64(123108031)).Return(nil, domain.ErrNotFound)

	ks := &mockKeyStore{}
	ks.On("Set", mock.Anything, "123108031", mock.Anything, 10*time.Minute).Return(nil)

	ml := &mockMailer{}
	ml.On("SendEmail", "123108031@nitkkr.ac.in", mock.Anything, mock.Anything, "").Return(nil)

	svc := newService(us, ks, ml, nil, nil)
	err := svc.SendCode(context.Background(), domain.SendCodeRequest{Identifier: "123108031"})

	require.NoError(t, err)
	us.AssertExpectations(t)
	ks.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestSendCode_AlreadyRegistered_NoWriteNoMail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)

	ks := &mockKeyStore{}
	ml := &mockMailer{}

	svc := newService(us, ks, ml, nil, nil)
	err := svc.SendCode(context.Background(), domain.SendCodeRequest{Identifier: "a@b.com"})

	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
	ks.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_RejectedIdentifier(t *testing.T) {
	svc := newService(&mockUserStore{}, &mockKeyStore{}, &mockMailer{}, nil, nil)

	err := svc.SendCode(context.Background(), domain.SendCodeRequest{Identifier: "12a45"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSendCode_MailFailureSurfaced(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByRollNumber", mock.Anything, int64(42)).Return(nil, domain.ErrNotFound)

	ks := &mockKeyStore{}
	ks.On("Set", mock.Anything, "42", mock.Anything, mock.Anything).Return(nil)

	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newService(us, ks, ml, nil, nil)
	err := svc.SendCode(context.Background(), domain.SendCodeRequest{Identifier: "42"})

	assert.ErrorIs(t, err, domain.ErrNotificationFailed)
}

func TestSendCode_StoreFailureSurfaced(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByRollNumber", mock.Anything, int64(42)).Return(nil, domain.ErrNotFound)

	ks := &mockKeyStore{}
	ks.On("Set", mock.Anything, "42", mock.Anything, mock.Anything).Return(domain.ErrStoreUnavailable)

	ml := &mockMailer{}

	svc := newService(us, ks, ml, nil, nil)
	err := svc.SendCode(context.Background(), domain.SendCodeRequest{Identifier: "42"})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- CreateUser ---

func validCreateReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Identifier:      "123108031",
		Name:            "Aman Gupta",
		Password:        "strongpassword",
		ConfirmPassword: "strongpassword",
		OTP:             "482913",
	}
}

func TestCreateUser_HappyPathWithEnrichment(t *testing.T) {
	ks := &mockKeyStore{}
	ks.On("Get", mock.Anything, "123108031").Return(pendingPayload(t, "482913", time.Now()), nil)
	ks.On("Delete", mock.Anything, "123108031").Return(nil)

	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.RollNumber != nil && *u.RollNumber == 123108031 &&
			u.Email == nil && u.Batch != nil && *u.Batch == "2023" &&
			hash.Compare("strongpassword", u.PasswordHash)
	})).Return(nil)

	ro := &mockRoster{}
	ro.On("Lookup", int64(123108031)).Return(domain.RosterEntry{Batch: "2023", Branch: "CSE"}, true)

	svc := newService(us, ks, &mockMailer{}, nil, ro)
	u, err := svc.CreateUser(context.Background(), validCreateReq())

	require.NoError(t, err)
	assert.Equal(t, "Aman Gupta", u.Name)
	us.AssertExpectations(t)
	ks.AssertExpectations(t)
}

func TestCreateUser_PasswordMismatch_BeforeAnySideEffect(t *testing.T) {
	ks := &mockKeyStore{}
	us := &mockUserStore{}

	req := validCreateReq()
	req.Password = "abcdefgh"
	req.ConfirmPassword = "abcdefgh1"

	svc := newService(us, ks, &mockMailer{}, nil, &mockRoster{})
	_, err := svc.CreateUser(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrValidation)
	ks.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_NoPendingEntry(t *testing.T) {
	ks := &mockKeyStore{}
	ks.On("Get", mock.Anything, "123108031").Return("", domain.ErrNotFound)

	svc := newService(&mockUserStore{}, ks, &mockMailer{}, nil, &mockRoster{})
	_, err := svc.CreateUser(context.Background(), validCreateReq())

	assert.ErrorIs(t, err, domain.ErrVerificationNotStarted)
}

func TestCreateUser_ExpiredIssuedAt(t *testing.T) {
	// Entry present (e.g. durable backend without TTL) but issued 11 minutes
	// ago. The redeem-time recheck must reject it.
	ks := &mockKeyStore{}
	ks.On("Get", mock.Anything, "123108031").
		Return(pendingPayload(t, "482913", time.Now().Add(-11*time.Minute)), nil)

	svc := newService(&mockUserStore{}, ks, &mockMailer{}, nil, &mockRoster{})
	_, err := svc.CreateUser(context.Background(), validCreateReq())

	assert.ErrorIs(t, err, domain.ErrOTPExpired)
	ks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCreateUser_WrongOTP(t *testing.T) {
	ks := &mockKeyStore{}
	ks.On("Get", mock.Anything, "123108031").Return(pendingPayload(t, "111111", time.Now()), nil)

	us := &mockUserStore{}

	svc := newService(us, ks, &mockMailer{}, nil, &mockRoster{})
	_, err := svc.CreateUser(context.Background(), validCreateReq())

	assert.ErrorIs(t, err, domain.ErrInvalidOTP)
	ks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_SingleConsumption(t *testing.T) {
	payload := pendingPayload(t, "482913", time.Now())

	ks := &mockKeyStore{}
	// First redemption reads and deletes the entry; the replay finds nothing.
	ks.On("Get", mock.Anything, "123108031").Return(payload, nil).Once()
	ks.On("Delete", mock.Anything, "123108031").Return(nil).Once()
	ks.On("Get", mock.Anything, "123108031").Return("", domain.ErrNotFound)

	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	ro := &mockRoster{}
	ro.On("Lookup", mock.Anything).Return(domain.RosterEntry{}, false)

	svc := newService(us, ks, &mockMailer{}, nil, ro)

	_, err := svc.CreateUser(context.Background(), validCreateReq())
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), validCreateReq())
	assert.ErrorIs(t, err, domain.ErrVerificationNotStarted)
}

func TestCreateUser_RosterMissNotFatal(t *testing.T) {
	ks := &mockKeyStore{}
	ks.On("Get", mock.Anything, "123108031").Return(pendingPayload(t, "482913", time.Now()), nil)
	ks.On("Delete", mock.Anything, "123108031").Return(nil)

	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Batch == nil && u.Branch == nil
	})).Return(nil)

	ro := &mockRoster{}
	ro.On("Lookup", int64(123108031)).Return(domain.RosterEntry{}, false)

	svc := newService(us, ks, &mockMailer{}, nil, ro)
	_, err := svc.CreateUser(context.Background(), validCreateReq())

	require.NoError(t, err)
	us.AssertExpectations(t)
}

func TestCreateUser_EmailIdentifierSkipsRoster(t *testing.T) {
	ks := &mockKeyStore{}
	ks.On("Get", mock.Anything, "a@b.com").Return(pendingPayload(t, "482913", time.Now()), nil)
	ks.On("Delete", mock.Anything, "a@b.com").Return(nil)

	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email != nil && *u.Email == "a@b.com" && u.RollNumber == nil
	})).Return(nil)

	ro := &mockRoster{}

	req := validCreateReq()
	req.Identifier = "a@b.com"

	svc := newService(us, ks, &mockMailer{}, nil, ro)
	_, err := svc.CreateUser(context.Background(), req)

	require.NoError(t, err)
	ro.AssertNotCalled(t, "Lookup", mock.Anything)
}

func TestCreateUser_DuplicateAtInsert(t *testing.T) {
	ks := &mockKeyStore{}
	ks.On("Get", mock.Anything, "123108031").Return(pendingPayload(t, "482913", time.Now()), nil)
	ks.On("Delete", mock.Anything, "123108031").Return(nil)

	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyRegistered)

	ro := &mockRoster{}
	ro.On("Lookup", mock.Anything).Return(domain.RosterEntry{}, false)

	svc := newService(us, ks, &mockMailer{}, nil, ro)
	_, err := svc.CreateUser(context.Background(), validCreateReq())

	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

// --- IssueLink / RedeemLink ---

func TestIssueLink_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByRollNumber", mock.Anything, int64(123108031)).Return(nil, domain.ErrNotFound)

	ts := &mockTokenSigner{}
	ts.On("SignVerification", "123108031", mock.Anything).Return("signed.jwt.token", nil)

	ml := &mockMailer{}
	ml.On("SendEmail", "123108031@nitkkr.ac.in", mock.Anything,
		mock.MatchedBy(func(text string) bool { return len(text) > 0 }),
		mock.MatchedBy(func(html string) bool { return len(html) > 0 }),
	).Return(nil)

	svc := newService(us, &mockKeyStore{}, ml, ts, nil)
	err := svc.IssueLink(context.Background(), domain.IssueLinkRequest{RollNumber: "123108031"})

	require.NoError(t, err)
	ml.AssertExpectations(t)
}

func TestIssueLink_EmailRejected(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, &mockKeyStore{}, &mockMailer{}, &mockTokenSigner{}, nil)
	err := svc.IssueLink(context.Background(), domain.IssueLinkRequest{RollNumber: "a@b.com"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIssueLink_AlreadyRegistered(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByRollNumber", mock.Anything, int64(42)).Return(&domain.User{UserID: "u1"}, nil)

	ts := &mockTokenSigner{}
	ml := &mockMailer{}

	svc := newService(us, &mockKeyStore{}, ml, ts, nil)
	err := svc.IssueLink(context.Background(), domain.IssueLinkRequest{RollNumber: "42"})

	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
	ts.AssertNotCalled(t, "SignVerification", mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeemLink_HappyPath(t *testing.T) {
	ts := &mockTokenSigner{}
	ts.On("VerifyVerification", "good-token").Return("123108031", time.Now(), nil)

	us := &mockUserStore{}
	us.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.RollNumber != nil && *u.RollNumber == 123108031
	})).Return(nil)

	ro := &mockRoster{}
	ro.On("Lookup", int64(123108031)).Return(domain.RosterEntry{}, false)

	svc := newService(us, &mockKeyStore{}, &mockMailer{}, ts, ro)
	u, err := svc.RedeemLink(context.Background(), domain.RedeemLinkRequest{
		Token:           "good-token",
		Name:            "Aman Gupta",
		Password:        "strongpassword",
		ConfirmPassword: "strongpassword",
	})

	require.NoError(t, err)
	assert.Equal(t, "Aman Gupta", u.Name)
}

func TestRedeemLink_InvalidToken(t *testing.T) {
	ts := &mockTokenSigner{}
	ts.On("VerifyVerification", "bad-token").Return("", time.Time{}, domain.ErrInvalidToken)

	us := &mockUserStore{}

	svc := newService(us, &mockKeyStore{}, &mockMailer{}, ts, &mockRoster{})
	_, err := svc.RedeemLink(context.Background(), domain.RedeemLinkRequest{
		Token:           "bad-token",
		Name:            "A",
		Password:        "strongpassword",
		ConfirmPassword: "strongpassword",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
