// =============================================================================
// Supplier Price Loader - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'inspect') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (pricing)
//   ├── processCmd (pricing process)
//   ├── inspectCmd (pricing inspect)
//   └── versionCmd (pricing version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading a .env file into the environment, if one exists
//   3. Providing the config and logger helpers shared by the subcommands
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/config"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag or PRICING_CONFIG.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Supplier Price Loader - turn the wide supplier pricing workbook into load-ready tables",
	Long: `Supplier Price Loader reads the wide-format supplier pricing workbook and
produces normalized relational extracts (products, suppliers, supplier items,
price quotes) ready for bulk database load.

For every workbook column it decides whether the column holds real price
observations or reference metadata, resolves the supplier and channel of
each price column from the alias table or the header text, and melts the
price columns into one row per quote. Columns whose content duplicates
another column are reported.

Example Usage:
  pricing process                      # Run with ./config.yaml
  pricing process --config ./run.toml  # Use a TOML configuration file
  pricing process --dry-run            # Run everything but write nothing
  pricing inspect                      # Show how each column is treated`,

	SilenceUsage: true,

	// PersistentPreRun runs before every subcommand.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is normal.
		_ = godotenv.Overload()

		if !cmd.Flags().Changed("config") {
			if env := os.Getenv("PRICING_CONFIG"); env != "" {
				cfgFile = env
			}
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command with a context cancelled by SIGINT or
// SIGTERM. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (.yaml, .yml or .toml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads and validates the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the run logger. The returned function flushes it.
func newLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, closeFn, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger.With(zap.String("config", cfg.Path())), closeFn, nil
}
