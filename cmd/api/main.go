package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anant-society/membership-api/internal/config"
	"github.com/anant-society/membership-api/internal/infrastructure/database"
	"github.com/anant-society/membership-api/internal/infrastructure/keystore"
	"github.com/anant-society/membership-api/internal/infrastructure/roster"
	"github.com/anant-society/membership-api/internal/infrastructure/smtp"
	"github.com/anant-society/membership-api/internal/infrastructure/token"
	transporthttp "github.com/anant-society/membership-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := database.NewUserStore(db)

	// Pending verifications live in a key-value store. SQLite is the
	// default; DynamoDB gives native TTL expiry when configured.
	var keyStore keystore.Store
	switch cfg.KeystoreBackend {
	case "dynamo":
		client, err := keystore.NewDynamoClient(context.Background(), cfg)
		if err != nil {
			log.Fatalf("dynamo: %v", err)
		}
		keystore.Bootstrap(context.Background(), client, cfg.KeyStoreTable)
		keyStore = keystore.NewDynamoStore(client, cfg.KeyStoreTable)
	default:
		keyStore = keystore.NewSQLiteStore(db)
	}

	var students *roster.Roster
	if cfg.RosterCSVPath != "" {
		students, err = roster.Load(cfg.RosterCSVPath)
		if err != nil {
			log.Fatalf("roster: %v", err)
		}
	} else {
		log.Println("WARN: no roster configured, profiles will not be enriched")
		students = roster.Empty()
	}

	deps := &transporthttp.Deps{
		Users:    users,
		KeyStore: keyStore,
		Tokens:   token.NewProvider(cfg),
		Mailer:   smtp.NewMailer(cfg),
		Roster:   students,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
