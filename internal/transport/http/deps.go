package http

import (
	"github.com/anant-society/membership-api/internal/infrastructure/database"
	"github.com/anant-society/membership-api/internal/infrastructure/keystore"
	"github.com/anant-society/membership-api/internal/infrastructure/roster"
	"github.com/anant-society/membership-api/internal/infrastructure/smtp"
	"github.com/anant-society/membership-api/internal/infrastructure/token"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Users    *database.UserStore
	KeyStore keystore.Store
	Tokens   *token.Provider
	Mailer   smtp.Mailer
	Roster   *roster.Roster
}
