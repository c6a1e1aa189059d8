// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	router "workid-wallet/internal/api"
	"workid-wallet/internal/api/handler"
	apimw "workid-wallet/internal/api/middleware"
	"workid-wallet/internal/config"
	"workid-wallet/internal/gateway"
	"workid-wallet/internal/repository"
	"workid-wallet/internal/repository/postgres"
	"workid-wallet/internal/service"
	"workid-wallet/internal/util"
	"workid-wallet/migrations"
	"workid-wallet/pkg/db"
)

// webhookVisitorTTL is how long an idle webhook client keeps its bucket.
const webhookVisitorTTL = 3 * time.Minute

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	EscrowRepository      repository.EscrowRepository
	PaymentRepository     repository.PaymentRepository

	// Services
	WalletService  service.WalletService
	EscrowService  service.EscrowService
	PaymentService service.PaymentService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components. Background workers
// started here stop when ctx is cancelled.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger so configuration errors are reported too
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	var database *sqlx.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(cfg.DatabaseURL)
	} else {
		database, err = db.NewPostgresDB(cfg.DB)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if cfg.RunMigrations {
		if err := db.RunMigrations(app.DB, migrations.FS); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Logger.Info("Database migrations applied.")
	}

	// 4. Initialize Repositories
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.EscrowRepository = postgres.NewEscrowRepository()
	app.PaymentRepository = postgres.NewPaymentRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	uow := service.NewUnitOfWork(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		cfg.StorageTimeout,
	)
	signer, err := gateway.NewSigner(cfg.Payments.WebhookSecret)
	if err != nil {
		return fmt.Errorf("failed to create webhook signer: %w", err)
	}

	app.WalletService = service.NewWalletService(uow, app.WalletRepository, app.TransactionRepository, app.Logger)
	app.EscrowService = service.NewEscrowService(uow, app.EscrowRepository, app.WalletRepository, app.TransactionRepository, app.Logger)
	app.PaymentService = service.NewPaymentService(
		uow,
		app.PaymentRepository,
		app.WalletRepository,
		app.TransactionRepository,
		signer,
		service.PaymentOptions{
			DefaultProvider:    cfg.Payments.DefaultProvider,
			MockGatewayEnabled: cfg.Payments.MockGatewayEnabled,
		},
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Wallet:  handler.NewWalletHandler(app.WalletService, app.Logger),
		Escrow:  handler.NewEscrowHandler(app.EscrowService, app.Logger),
		Payment: handler.NewPaymentHandler(app.PaymentService, app.Logger),
	}, router.Options{
		RequestTimeout:     cfg.RequestTimeout,
		WebhookLimiter:     apimw.NewRateLimiter(ctx, cfg.Webhook.RateLimitRPS, cfg.Webhook.RateLimitBurst, webhookVisitorTTL),
		MockGatewayEnabled: cfg.Payments.MockGatewayEnabled,
	})
	app.Logger.Info("HTTP router and handlers initialized.", "mock_gateway", cfg.Payments.MockGatewayEnabled)

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
