package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/jdoshi/famledger/docs"
	"github.com/jdoshi/famledger/internal/auth"
	"github.com/jdoshi/famledger/internal/cleanup"
	"github.com/jdoshi/famledger/internal/config"
	"github.com/jdoshi/famledger/internal/currency"
	"github.com/jdoshi/famledger/internal/database"
	"github.com/jdoshi/famledger/internal/expense"
	"github.com/jdoshi/famledger/internal/family"
	"github.com/jdoshi/famledger/internal/files"
	"github.com/jdoshi/famledger/internal/metrics"
	"github.com/jdoshi/famledger/internal/notification"
	"github.com/jdoshi/famledger/internal/push"
	"github.com/jdoshi/famledger/internal/stats"
	"github.com/jdoshi/famledger/internal/user"
	mw "github.com/jdoshi/famledger/pkg/middleware"
)

// @title           FamLedger API
// @version         1.0
// @description     Family expense tracking backend.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	dotenvErr := godotenv.Load()

	cfg := config.Load()

	logger := newLogger(cfg.Environment)
	if dotenvErr != nil {
		logger.Info().Msg("no .env file found, using environment variables")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	logger.Info().Msg("connected to database")

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Push delivery and notification fan-out
	var sender push.Sender = push.NopSender{}
	if cfg.FCMServerKey != "" {
		sender = push.NewFCMSender(cfg.FCMEndpoint, cfg.FCMServerKey)
	}
	notificationRepo := notification.NewRepository(db)
	dispatcher := notification.NewFanout(notificationRepo, userService, sender, logger)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Auth feature
	tokenStore := auth.NewRepository(db)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, tokenStore)
	verifier := auth.NewFirebaseVerifier(cfg.FirebaseLookup, cfg.FirebaseAPIKey)
	authService := auth.NewService(verifier, tokenManager, userService)
	authHandler := auth.NewHandler(authService)

	// Family feature
	familyRepo := family.NewRepository(db)
	familyService := family.NewService(familyRepo, userService, dispatcher)
	familyHandler := family.NewHandler(familyService)

	// Expense feature
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, userService, familyService, dispatcher)
	expenseHandler := expense.NewHandler(expenseService)

	// Stats feature
	statsService := stats.NewService(expenseRepo, userService, familyService)
	statsHandler := stats.NewHandler(statsService)

	// Profile picture storage
	storage, err := files.NewLocalStorage(cfg.FileStorageDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file storage")
	}
	filesHandler := files.NewHandler(storage)

	currencyHandler := currency.NewHandler()

	// Soft-delete retention job
	purgeJob := cleanup.NewJob(expenseRepo, cfg.ExpenseRetentionDays, logger)
	if err := purgeJob.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start cleanup job")
	}
	defer purgeJob.Stop()

	m := metrics.New()
	authMw := mw.Auth(tokenManager)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.RequestLogger(logger))
	r.Use(m.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMw))
		r.Mount("/currencies", currencyHandler.Routes())
		r.Mount("/files", filesHandler.Routes(authMw))

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Mount("/users", userHandler.Routes())
			r.Mount("/families", familyHandler.Routes())
			r.Mount("/join-requests", familyHandler.JoinRequestRoutes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Mount("/stats", statsHandler.Routes())
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func newLogger(environment string) zerolog.Logger {
	if environment == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
