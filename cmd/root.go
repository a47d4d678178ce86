// =============================================================================
// Payroll Bank Splitter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (payroll-splitter)
//   ├── processCmd (payroll-splitter process)
//   ├── serveCmd   (payroll-splitter serve)
//   ├── banksCmd   (payroll-splitter banks)
//   └── versionCmd (payroll-splitter version)
//
// CONFIGURATION:
//   The root command loads the YAML configuration and sets up logging before
//   any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// appConfig is the configuration loaded for the running command.
var appConfig *config.Config

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "payroll-splitter",
	Short: "Payroll Bank Splitter - Split a payroll sheet into per-bank payment files",
	Long: `Payroll Bank Splitter turns one payroll spreadsheet (name, IBAN, net salary)
into bank submission files, one set per receiving bank and branch.

Key Features:
  - Routing by the bank and branch codes inside each IBAN
  - Files capped by row count and by total amount
  - Structured summary report with per-bank and grand totals
  - Pipe-delimited .txt/.csv encodings for the bank upload portal
  - HTTP server for step-by-step sessions

Example Usage:
  payroll-splitter process --input payroll.xlsx          # Run every stage
  payroll-splitter process --input payroll.xlsx --zip    # Also write a zip bundle
  payroll-splitter serve --addr :8080                    # Start the HTTP server`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logging.Setup(level, cfg.Logging.Format)

		appConfig = cfg
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},

	SilenceUsage: true,
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the configuration file (built-in defaults are used when the default file is absent)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
