package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"

	"github.com/Vadied/party-manager/internal/auth"
	"github.com/Vadied/party-manager/internal/booking"
	"github.com/Vadied/party-manager/internal/config"
	"github.com/Vadied/party-manager/internal/database"
	"github.com/Vadied/party-manager/internal/handlers"
	"github.com/Vadied/party-manager/internal/kvstore"
	"github.com/Vadied/party-manager/internal/kvstore/redisstore"
	"github.com/Vadied/party-manager/internal/models"
	"github.com/Vadied/party-manager/internal/notify"
	"github.com/Vadied/party-manager/internal/ratelimit"
	"github.com/Vadied/party-manager/internal/storage"
	"github.com/Vadied/party-manager/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		config.Exitf("config: %v", err)
	}

	// Accounts and the email outbox always live in SQLite.
	db, err := database.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	kv, closeStore, err := openStore(cfg, db)
	if err != nil {
		log.Fatalf("Error opening %s store: %v", cfg.Store, err)
	}
	defer closeStore()

	admins := auth.NewAllowList(cfg.AdminEmails)
	if admins.Len() == 0 {
		log.Println("ADMIN_EMAILS is empty; nobody can open the admin area")
	}
	for email, hash := range cfg.AdminAccounts {
		if _, err := database.ProvisionUser(context.Background(), db, "", email, hash); err != nil {
			log.Fatalf("Error provisioning admin account: %v", err)
		}
		log.Printf("Provisioned admin account %s", database.NormalizeEmail(email))
	}
	if admins.Len() > 0 && len(cfg.AdminAccounts) == 0 {
		log.Println("ADMIN_ACCOUNTS is empty; only accounts provisioned earlier can sign in as admin")
	}

	repo := storage.New(kv)
	renderer := notify.Renderer{Location: loc}
	handler := handlers.NewHandler(handlers.Deps{
		DB:       db,
		Bookings: booking.NewService(repo),
		Teams:    team.NewService(repo),
		Renderer: renderer,
		Mailer: notify.NewMailer(renderer, cfg.EmailDelay, func(ctx context.Context, emails []models.SentEmail) error {
			return database.RecordSentEmails(ctx, db, emails)
		}),
		Issuer:         auth.NewIssuer([]byte(cfg.SessionSecret), cfg.SessionTTL, admins),
		Limiter:        ratelimit.New(cfg.BookingRatePerMinute, cfg.BookingRateBurst),
		SubmitDelay:    cfg.SubmitDelay,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (store: %s)", server.Addr, cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
		return
	}
	log.Println("Server stopped")
}

// openStore returns the backend holding the booking and team collections.
func openStore(cfg *config.Config, db *sql.DB) (kvstore.Store, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return redisstore.New(client, cfg.RedisPrefix), func() { client.Close() }, nil
	case config.StoreMemory:
		log.Println("Using the in-memory store; bookings and teams are lost on restart")
		return kvstore.NewMemory(), func() {}, nil
	default:
		return database.NewKV(db), func() {}, nil
	}
}
