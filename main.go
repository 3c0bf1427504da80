package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/krushndayshmookh/krushn-calendar/auth"
	"github.com/krushndayshmookh/krushn-calendar/config"
	"github.com/krushndayshmookh/krushn-calendar/controllers"
	jobs "github.com/krushndayshmookh/krushn-calendar/job"
	"github.com/krushndayshmookh/krushn-calendar/metrics"
	"github.com/krushndayshmookh/krushn-calendar/middlewares"
	"github.com/krushndayshmookh/krushn-calendar/migrations"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/repositories"
	"github.com/krushndayshmookh/krushn-calendar/routes"
	"github.com/krushndayshmookh/krushn-calendar/services"
	"github.com/krushndayshmookh/krushn-calendar/services/gateway"
	"github.com/krushndayshmookh/krushn-calendar/storage"
	"github.com/krushndayshmookh/krushn-calendar/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	metrics.Register(prometheus.DefaultRegisterer)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Fatal("Error loading environment variables: ", err)
	}

	cfg := config.LoadConfig()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatal("Invalid configuration: ", err)
	}
	logrus.WithFields(logrus.Fields{
		"env":       cfg.Env,
		"auth_mode": cfg.AuthMode,
		"db_driver": cfg.DBDriver,
		"storage":   cfg.StorageType,
	}).Info("Configuration loaded")

	if cfg.TokenEncryptionKey != "" {
		cipher, err := utils.NewTokenCipherFromHex(cfg.TokenEncryptionKey)
		if err != nil {
			logrus.Fatal("Invalid TOKEN_ENCRYPTION_KEY: ", err)
		}
		models.InitEncryption(cipher)
	} else {
		logrus.Warn("TOKEN_ENCRYPTION_KEY not set, refresh tokens are stored unencrypted")
	}

	db, err := repositories.InitDB(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer repositories.CloseDB()

	if err := migrations.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to access database handle: ", err)
	}

	ctx := context.Background()

	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	metadataRepo := repositories.NewMetadataRepository(db)
	ownershipRepo := repositories.NewOwnershipRepository(db)

	oauthConfig := auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	identity := services.NewIdentityService(userRepo, ownershipRepo, cfg.LegacyOwnerEmail)

	exportStore, err := storage.New(ctx, cfg)
	if err != nil {
		logrus.Fatal("Failed to configure export storage: ", err)
	}

	exportService := services.NewExportService(categoryRepo, metadataRepo, exportStore)

	handlers := routes.Handlers{
		Events: controllers.NewEventController(
			services.NewEventService(gateway.NewGoogleFactory(oauthConfig, cfg.CalendarID), metadataRepo, categoryRepo),
		),
		Categories: controllers.NewCategoryController(services.NewCategoryService(categoryRepo)),
		Export:     controllers.NewExportController(exportService),
		Health:     controllers.NewHealthController(sqlDB),
		StaticDir:  cfg.StaticDir,
	}

	switch cfg.AuthMode {
	case config.AuthModePassphrase:
		operator, err := identity.EnsureOperator(ctx, cfg.OperatorEmail, cfg.GoogleRefreshToken)
		if err != nil {
			logrus.Fatal("Failed to prepare operator user: ", err)
		}
		handlers.Authenticator = middlewares.NewPassphraseAuthenticator(cfg.AppPassword, cfg.AppPasswordHash, operator)
	default:
		signer := utils.NewSessionSigner(cfg.SessionSecret)
		handlers.Authenticator = middlewares.NewSessionAuthenticator(signer, identity)
		handlers.Auth = controllers.NewAuthController(
			auth.NewProvider(oauthConfig),
			newStateStore(cfg),
			identity,
			signer,
			cfg.FrontendURL,
			cfg.IsProduction(),
		)
	}

	e := routes.SetupRouter(handlers)

	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	if cfg.ExportSchedule != "" {
		scheduler, err := jobs.NewExportJob(userRepo, exportService).Schedule(jobCtx, cfg.ExportSchedule)
		if err != nil {
			logrus.Fatal("Failed to schedule exports: ", err)
		}
		defer scheduler.Stop()
	}

	go func() {
		logrus.Infof("Server listening on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
	logrus.Info("Server stopped")
}

func newStateStore(cfg *config.Config) auth.StateStore {
	client := config.NewRedisClient(cfg)
	if client == nil {
		return auth.NewMemoryStateStore(auth.StateTTL)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, keeping OAuth state in memory")
		return auth.NewMemoryStateStore(auth.StateTTL)
	}
	logrus.Info("OAuth state stored in Redis")
	return auth.NewRedisStateStore(client, auth.StateTTL)
}
