// Package auth signs members in with the same identifier shapes the
// registration flow accepts.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/anant-society/membership-api/internal/domain"
	"github.com/anant-society/membership-api/internal/pkg/hash"
	"github.com/anant-society/membership-api/internal/pkg/validate"
)

type Service interface {
	// Login verifies the identifier/password pair and returns a session
	// token plus the account.
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRollNumber(ctx context.Context, rollNumber int64) (*domain.User, error)
}

type sessionSigner interface {
	SignSession(userID string) (string, error)
}

type service struct {
	users  userStore
	tokens sessionSigner
}

func NewService(users userStore, tokens sessionSigner) Service {
	return &service{users: users, tokens: tokens}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return "", nil, err
	}
	ident, err := domain.ClassifyIdentifier(req.Identifier)
	if err != nil {
		return "", nil, err
	}

	var u *domain.User
	switch ident.Kind {
	case domain.KindEmail:
		u, err = s.users.GetByEmail(ctx, ident.Email)
	case domain.KindRollNumber:
		u, err = s.users.GetByRollNumber(ctx, ident.RollNumber)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("user not found, please register: %w", domain.ErrNotFound)
		}
		return "", nil, err
	}

	if !hash.Compare(req.Password, u.PasswordHash) {
		return "", nil, fmt.Errorf("invalid password: %w", domain.ErrUnauthorized)
	}

	tok, err := s.tokens.SignSession(u.UserID)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}
