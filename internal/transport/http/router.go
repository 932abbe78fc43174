package http

import (
	"net/http"

	"github.com/anant-society/membership-api/internal/application/auth"
	"github.com/anant-society/membership-api/internal/application/registration"
	"github.com/anant-society/membership-api/internal/config"
	"github.com/anant-society/membership-api/internal/transport/http/handler"
	appmiddleware "github.com/anant-society/membership-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10. OTPs and passwords are guessable at
	// volume, so every public endpoint sits behind this.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	registrationSvc := registration.NewService(registration.ServiceDeps{
		Users:      deps.Users,
		Mailer:     deps.Mailer,
		Roster:     deps.Roster,
		KeyStore:   deps.KeyStore,
		Tokens:     deps.Tokens,
		MailDomain: cfg.MailDomain,
		BaseURL:    cfg.BaseURL,
		OTPTTL:     cfg.OTPTTL,
		LinkTTL:    cfg.LinkTTL,
	})
	authSvc := auth.NewService(deps.Users, deps.Tokens)

	healthH := handler.NewHealthHandler()
	registerH := handler.NewRegisterHandler(registrationSvc)
	verifyH := handler.NewVerifyHandler(registrationSvc)
	sessionH := handler.NewSessionHandler(authSvc, deps.Users)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/register/{action}", registerH.Action)
		r.With(sensitiveRL.Limit).Post("/verify/{action}", verifyH.Action)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.Tokens))

			r.Get("/sessions", sessionH.GetCurrent)
		})
	})

	return r
}
