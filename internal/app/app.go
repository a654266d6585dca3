package app

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/crypto"
	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/logging"
	"github.com/andy/invoicer/internal/render"
	"github.com/andy/invoicer/internal/repository"
	"github.com/andy/invoicer/internal/service"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *db.DB

	// Repositories
	InvoiceRepo repository.InvoiceRepository
	CounterRepo repository.CounterRepository

	// Services
	Numbers        service.NumberSequence
	InvoiceService service.InvoiceService
}

// New loads the default config and builds the application
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config. It resolves the
// database key, opens and migrates the store, then wires repositories and
// services.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	password, err := resolveKey(crypto.NewKeyring(), logger)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path, password, logger)
	if errors.Is(err, db.ErrWrongKey) {
		return nil, fmt.Errorf("failed to open database %s (check %s or the system keyring): %w",
			cfg.Database.Path, crypto.EnvKey, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := build(cfg, database, logger)
	logger.Info("application started", zap.String("db", cfg.Database.Path))
	return a, nil
}

// build wires repositories and services over an open, migrated database
func build(cfg *config.Config, database *db.DB, logger *zap.Logger) *App {
	txm := repository.NewTxManager(database)
	invoiceRepo := repository.NewInvoiceRepo(database, logger.Named("store"))
	counterRepo := repository.NewCounterRepo(database)
	numbers := service.NewNumberSequence(counterRepo, nil)

	invoiceService := service.NewInvoiceService(
		txm,
		invoiceRepo,
		numbers,
		render.NewPDFRenderer(logger.Named("pdf")),
		export.NewLedgerExporter(logger.Named("ledger")),
		service.Defaults{
			Currency:  cfg.Currency(),
			Template:  domain.TemplateKey(cfg.Invoice.DefaultTemplate),
			Seller:    cfg.SellerParty(),
			QREnabled: cfg.Invoice.QREnabled,
		},
		logger.Named("invoices"),
	)

	return &App{
		Config:         cfg,
		Logger:         logger,
		DB:             database,
		InvoiceRepo:    invoiceRepo,
		CounterRepo:    counterRepo,
		Numbers:        numbers,
		InvoiceService: invoiceService,
	}
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// resolveKey returns the stored database key, prompting for a new one on
// first run.
func resolveKey(keyring crypto.Keyring, logger *zap.Logger) (string, error) {
	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}
	logger.Debug("no stored database key", zap.Error(err))

	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, nil
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your invoices will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", crypto.ErrEmptyPassword
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
