// =============================================================================
// Payroll Bank Splitter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. A single YAML file carries every setting; any value left
// out of the file falls back to the built-in default.
//
// CONFIGURATION SECTIONS:
//   - input    : Required column names and name length limit
//   - limits   : Per-file row and amount caps
//   - payer    : Static payment fields written into every bank file
//   - banks    : The closed set of routable banks
//   - branches : Registered branch identifiers for dynamic-branch banks
//   - output   : Output directory and sheet names
//   - logging  : Log level and format
//   - server   : Listen address for the HTTP surface
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file looked up when no --config flag is given.
// A missing default file is not an error.
const DefaultConfigFile = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	Input    InputConfig   `yaml:"input"`
	Limits   LimitsConfig  `yaml:"limits"`
	Payer    PayerConfig   `yaml:"payer"`
	Banks    []BankConfig  `yaml:"banks"`
	Branches []string      `yaml:"branches"`
	Output   OutputConfig  `yaml:"output"`
	Logging  LoggingConfig `yaml:"logging"`
	Server   ServerConfig  `yaml:"server"`
}

// =============================================================================
// INPUT SETTINGS
// =============================================================================

// InputConfig describes the payroll sheet contract.
type InputConfig struct {
	// NameColumn is the header of the employee name column.
	// Default: "name"
	NameColumn string `yaml:"name_column"`

	// IBANColumn is the header of the IBAN column.
	// Default: "IBAN"
	IBANColumn string `yaml:"iban_column"`

	// SalaryColumn is the header of the net salary column.
	// Default: "net salary"
	SalaryColumn string `yaml:"salary_column"`

	// NameMaxLength is the number of characters kept from each name.
	// Default: 35
	NameMaxLength int `yaml:"name_max_length"`

	// Sheet is the sheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet"`
}

// =============================================================================
// LIMITS
// =============================================================================

// LimitsConfig holds the two hard caps applied to every output file.
type LimitsConfig struct {
	// MaxRowsPerFile is the row cap R.
	// Default: 4000
	MaxRowsPerFile int `yaml:"max_rows_per_file"`

	// MaxAmountPerFile is the amount cap A in currency units.
	// Stored as a string so large values survive YAML float parsing.
	// Default: "4500000000"
	MaxAmountPerFile string `yaml:"max_amount_per_file"`
}

// MaxAmount returns MaxAmountPerFile as a decimal.
// The value is checked by validate, so the error path is unreachable after Load.
func (l LimitsConfig) MaxAmount() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(l.MaxAmountPerFile))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// PAYER SETTINGS
// =============================================================================

// PayerConfig holds the static fields written into every bank file.
type PayerConfig struct {
	// Name is the paying organisation.
	Name string `yaml:"name"`

	// Account is the paying IBAN.
	Account string `yaml:"account"`

	// Currency is the ISO currency code.
	// Default: "IQD"
	Currency string `yaml:"currency"`

	// ChargesCode is the "Details of Charges" value.
	// Default: "SLEV"
	ChargesCode string `yaml:"charges_code"`

	// RemittanceTemplate builds the remittance information.
	// Placeholders: {year}, {month}
	// Default: "SALARY {year} {month}"
	RemittanceTemplate string `yaml:"remittance_template"`

	// MonthNames overrides the month names used for {month}.
	// Must contain exactly 12 entries when set.
	MonthNames []string `yaml:"month_names"`
}

// =============================================================================
// BANK SETTINGS
// =============================================================================

// BankConfig describes one routable bank.
type BankConfig struct {
	// Code is the 4-character bank code found at IBAN offset 4.
	Code string `yaml:"code"`

	// DefaultBIC is the receiver identifier used when no branch applies.
	DefaultBIC string `yaml:"default_bic"`

	// DisplayName is used in output file names and the summary.
	DisplayName string `yaml:"display_name"`

	// DynamicBranches enables branch resolution from IBAN offset 8.
	DynamicBranches bool `yaml:"dynamic_branches"`

	// BranchPrefix is prepended to the 3-character branch code.
	// Default: Code + "IQBA"
	BranchPrefix string `yaml:"branch_prefix"`
}

// =============================================================================
// OUTPUT, LOGGING AND SERVER SETTINGS
// =============================================================================

// OutputConfig controls where and how artifacts are written.
type OutputConfig struct {
	// Dir is the directory the process command writes into.
	// Default: "./output"
	Dir string `yaml:"dir"`

	// SheetName is the sheet name of every bank file.
	// Default: "Sheet1"
	SheetName string `yaml:"sheet_name"`

	// SummarySheetName is the sheet name of the summary report.
	// Default: "Summary"
	SummarySheetName string `yaml:"summary_sheet_name"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level: "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level"`

	// Format: "text" or "json". Default: "text"
	Format string `yaml:"format"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadBytes caps the uploaded payroll file. Default: 32 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. When it is empty or
//     equal to DefaultConfigFile and the file does not exist, the built-in
//     defaults are returned.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		configPath = DefaultConfigFile
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && configPath == DefaultConfigFile:
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Input.NameColumn == "" {
		cfg.Input.NameColumn = "name"
	}
	if cfg.Input.IBANColumn == "" {
		cfg.Input.IBANColumn = "IBAN"
	}
	if cfg.Input.SalaryColumn == "" {
		cfg.Input.SalaryColumn = "net salary"
	}
	if cfg.Input.NameMaxLength == 0 {
		cfg.Input.NameMaxLength = 35
	}

	if cfg.Limits.MaxRowsPerFile == 0 {
		cfg.Limits.MaxRowsPerFile = 4000
	}
	if cfg.Limits.MaxAmountPerFile == "" {
		cfg.Limits.MaxAmountPerFile = "4500000000"
	}

	if cfg.Payer.Name == "" {
		cfg.Payer.Name = "Basra Directorate of Education"
	}
	if cfg.Payer.Account == "" {
		cfg.Payer.Account = "IQ26RAFB002100366585001"
	}
	if cfg.Payer.Currency == "" {
		cfg.Payer.Currency = "IQD"
	}
	if cfg.Payer.ChargesCode == "" {
		cfg.Payer.ChargesCode = "SLEV"
	}
	if cfg.Payer.RemittanceTemplate == "" {
		cfg.Payer.RemittanceTemplate = "SALARY {year} {month}"
	}

	if len(cfg.Banks) == 0 {
		cfg.Banks = defaultBanks()
	}
	for i := range cfg.Banks {
		if cfg.Banks[i].DynamicBranches && cfg.Banks[i].BranchPrefix == "" {
			cfg.Banks[i].BranchPrefix = cfg.Banks[i].Code + "IQBA"
		}
	}
	if len(cfg.Branches) == 0 {
		cfg.Branches = defaultBranches()
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Output.SheetName == "" {
		cfg.Output.SheetName = "Sheet1"
	}
	if cfg.Output.SummarySheetName == "" {
		cfg.Output.SummarySheetName = "Summary"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
}

// validate checks the configuration for values the pipeline cannot work with.
func (c *Config) validate() error {
	if c.Limits.MaxRowsPerFile < 1 {
		return fmt.Errorf("max_rows_per_file must be at least 1, got %d", c.Limits.MaxRowsPerFile)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(c.Limits.MaxAmountPerFile))
	if err != nil {
		return fmt.Errorf("max_amount_per_file %q is not a number: %w", c.Limits.MaxAmountPerFile, err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("max_amount_per_file must be positive, got %s", amount)
	}

	if c.Input.NameMaxLength < 1 {
		return fmt.Errorf("name_max_length must be at least 1, got %d", c.Input.NameMaxLength)
	}

	if n := len(c.Payer.MonthNames); n != 0 && n != 12 {
		return fmt.Errorf("month_names must list 12 months, got %d", n)
	}

	seen := make(map[string]bool, len(c.Banks))
	names := make(map[string]string, len(c.Banks))
	for i, bank := range c.Banks {
		if len(bank.Code) != 4 {
			return fmt.Errorf("bank %d: code %q must be 4 characters", i+1, bank.Code)
		}
		if len(bank.DefaultBIC) != 11 {
			return fmt.Errorf("bank %s: default_bic %q must be 11 characters", bank.Code, bank.DefaultBIC)
		}
		if bank.DisplayName == "" {
			return fmt.Errorf("bank %s: display_name is required", bank.Code)
		}
		if bank.DynamicBranches && len(bank.BranchPrefix) != 8 {
			return fmt.Errorf("bank %s: branch_prefix %q must be 8 characters", bank.Code, bank.BranchPrefix)
		}
		if seen[bank.Code] {
			return fmt.Errorf("bank %s is listed twice", bank.Code)
		}
		seen[bank.Code] = true

		// Display names prefix the bank file names and key the summary.
		if other, ok := names[bank.DisplayName]; ok {
			return fmt.Errorf("banks %s and %s share display_name %q", other, bank.Code, bank.DisplayName)
		}
		names[bank.DisplayName] = bank.Code
	}

	return nil
}

// =============================================================================
// BUILT-IN BANK TABLE
// =============================================================================

// defaultBanks returns the routable banks.
func defaultBanks() []BankConfig {
	return []BankConfig{
		{Code: "RAFB", DefaultBIC: "RAFBIQB1098", DisplayName: "Rafidain"},
		{Code: "RDBA", DefaultBIC: "RDBAIQB1046", DisplayName: "Rasheed"},
		{Code: "AIBI", DefaultBIC: "AIBIIQBA991", DisplayName: "Ashur"},
		{Code: "IDBQ", DefaultBIC: "IDBQIQBA004", DisplayName: "Development"},
		{Code: "AINI", DefaultBIC: "AINIIQBA015", DisplayName: "AlTaif", DynamicBranches: true},
		{Code: "NBIQ", DefaultBIC: "NBIQIQBA830", DisplayName: "National", DynamicBranches: true},
	}
}

// defaultBranches returns every registered receiver identifier.
func defaultBranches() []string {
	return []string{
		"RAFBIQB1098", "RDBAIQB1046", "AIBIIQBA991", "IDBQIQBA004",
		"AINIIQBA015", "AINIIQBA009",
		"NBIQIQBA830", "NBIQIQBA856", "NBIQIQBA859", "NBIQIQBA005",
		"NBIQIQBA860", "NBIQIQBA862", "NBIQIQBA849", "NBIQIQBA865",
		"NBIQIQBA844", "NBIQIQBA848", "NBIQIQBA850",
	}
}
