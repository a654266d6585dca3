package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logging"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice defaults
	Invoice InvoiceConfig `yaml:"invoice"`

	// Seller profile copied onto every new draft
	Seller SellerConfig `yaml:"seller"`

	Logging LoggingConfig `yaml:"logging"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to the encrypted SQLite database
}

type InvoiceConfig struct {
	OutputDir       string `yaml:"output_dir"`       // Directory for generated PDFs and ledgers
	DefaultPreset   string `yaml:"default_preset"`   // Preset key used when none is given
	DefaultCurrency string `yaml:"default_currency"` // ISO code, e.g. "INR"
	DefaultTemplate string `yaml:"default_template"` // simple, modern or premium
	RecentLimit     int    `yaml:"recent_limit"`     // Rows shown by list and the TUI
	QREnabled       bool   `yaml:"qr_enabled"`       // Print a QR code on new invoices
}

type SellerConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	TaxID   string `yaml:"tax_id"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // console or json
	OutputPath string `yaml:"output_path"` // stdout, stderr or a file
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "invoicer")
}

// DefaultConfigPath returns ~/.config/invoicer/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := configDir()

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "invoicer.db"),
		},
		Invoice: InvoiceConfig{
			OutputDir:       filepath.Join(dir, "invoices"),
			DefaultPreset:   domain.PresetIndiaGST,
			DefaultCurrency: domain.DefaultCurrency.Code,
			DefaultTemplate: string(domain.DefaultTemplate),
			RecentLimit:     20,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: filepath.Join(dir, "invoicer.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Validate checks the invoice defaults against the built-in catalogs
func (c *Config) Validate() error {
	if _, err := domain.GetPreset(c.Invoice.DefaultPreset); err != nil {
		return err
	}
	if _, ok := domain.LookupCurrency(c.Invoice.DefaultCurrency); !ok {
		return fmt.Errorf("unsupported currency %q", c.Invoice.DefaultCurrency)
	}
	if !domain.IsValidTemplate(domain.TemplateKey(c.Invoice.DefaultTemplate)) {
		return fmt.Errorf("unknown template %q", c.Invoice.DefaultTemplate)
	}
	if c.Invoice.RecentLimit <= 0 {
		return fmt.Errorf("recent_limit must be positive, got %d", c.Invoice.RecentLimit)
	}
	return nil
}

// Currency resolves the configured default currency
func (c *Config) Currency() domain.Currency {
	if cur, ok := domain.LookupCurrency(c.Invoice.DefaultCurrency); ok {
		return cur
	}
	return domain.DefaultCurrency
}

// SellerParty builds the seller block for new drafts. An empty tax id is
// left unset so the preset decides whether one is required.
func (c *Config) SellerParty() domain.Party {
	p := domain.Party{
		Name:    strings.TrimSpace(c.Seller.Name),
		Address: strings.TrimSpace(c.Seller.Address),
	}
	if id := strings.TrimSpace(c.Seller.TaxID); id != "" {
		p.TaxID = &id
	}
	return p
}

// LoggerConfig adapts the logging section for logging.New
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		OutputPath: c.Logging.OutputPath,
	}
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, invoices, etc.)
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0700); err != nil {
		return err
	}

	if err := os.MkdirAll(c.Invoice.OutputDir, 0755); err != nil {
		return err
	}

	return nil
}
