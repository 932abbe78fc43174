package domain

import "time"

// User is a society member account. Exactly one of Email / RollNumber is set
// depending on how the member registered; both carry UNIQUE constraints in
// the store, which is the authoritative duplicate-registration check.
type User struct {
	UserID       string     `json:"id"`
	Name         string     `json:"name"`
	Email        *string    `json:"email,omitempty"`
	RollNumber   *int64     `json:"roll_number,omitempty"`
	PasswordHash string     `json:"-"`
	Batch        *string    `json:"batch,omitempty"`
	Branch       *string    `json:"branch,omitempty"`
	Position     *string    `json:"position,omitempty"`
	ClubDept     *string    `json:"club_dept,omitempty"`
	CreatedAt    time.Time  `json:"created"`
	UpdatedAt    time.Time  `json:"updated"`
}

// RosterEntry holds the optional profile fields looked up from the institute
// roster when a member registers with a roll number.
type RosterEntry struct {
	Batch    string
	Branch   string
	Position string
	ClubDept string
}

type SendCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type CreateUserRequest struct {
	Identifier      string `json:"identifier" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	OTP             string `json:"otp" validate:"required,len=6"`
}

type IssueLinkRequest struct {
	RollNumber string `json:"roll_number" validate:"required"`
}

type RedeemLinkRequest struct {
	Token           string `json:"token" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}
