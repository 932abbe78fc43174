package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anant-society/membership-api/internal/domain"
)

// UserStore stores member accounts. The UNIQUE constraints on email and
// roll_number make Create the authoritative duplicate-registration check:
// a lookup that raced with another insert still fails here, atomically.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `user_id, name, email, roll_number, password_hash, batch, branch, position, club_dept, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var email sql.NullString
	var rollNumber sql.NullInt64
	var batch, branch, position, clubDept sql.NullString

	err := scanner.Scan(
		&u.UserID, &u.Name, &email, &rollNumber, &u.PasswordHash,
		&batch, &branch, &position, &clubDept, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		u.Email = &email.String
	}
	if rollNumber.Valid {
		u.RollNumber = &rollNumber.Int64
	}
	if batch.Valid {
		u.Batch = &batch.String
	}
	if branch.Valid {
		u.Branch = &branch.String
	}
	if position.Valid {
		u.Position = &position.String
	}
	if clubDept.Valid {
		u.ClubDept = &clubDept.String
	}
	return &u, nil
}

// Create inserts the user. A uniqueness violation on email or roll_number
// maps to domain.ErrAlreadyRegistered.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.UserID, u.Name, u.Email, u.RollNumber, u.PasswordHash,
		u.Batch, u.Branch, u.Position, u.ClubDept, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		// modernc/sqlite reports constraint violations by message, not by a
		// typed error.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("create user: %w", domain.ErrAlreadyRegistered)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE user_id = ?`, userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user by email: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByRollNumber(ctx context.Context, rollNumber int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE roll_number = ?`, rollNumber)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user by roll number: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by roll number: %w", err)
	}
	return u, nil
}
