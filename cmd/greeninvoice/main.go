package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Razaranyi/GreenInvoice/internal/common"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "greeninvoice",
		Short: "🧾 Tax invoice automation for a therapy practice",
		Long: `greeninvoice reads a spreadsheet of payment records, resolves each
client against the GreenInvoice billing provider, and issues tax invoice
receipts, marking each row so rerunning never bills twice.`,
		PersistentPreRunE: initConfig,
	}
)

// Exit codes for the fatal conditions a run can hit.
const (
	exitFailure         = 1
	exitAuth            = 2
	exitBadSpreadsheet  = 3
	exitAlreadyInvoiced = 4
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/greeninvoice/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(checkClientsCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a fatal error onto its documented exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, common.ErrAuth) || errors.Is(err, common.ErrMissingCredential):
		return exitAuth
	case errors.Is(err, common.ErrMalformedRow) ||
		errors.Is(err, common.ErrUnresolvedClient) ||
		errors.Is(err, common.ErrNoPaymentMethod) ||
		errors.Is(err, common.ErrInvalidRecord):
		return exitBadSpreadsheet
	case errors.Is(err, common.ErrAlreadyInvoiced):
		return exitAlreadyInvoiced
	default:
		return exitFailure
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/greeninvoice", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("GREENINVOICE")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Set up logging
	level, err := common.ParseLogLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			slog.Info("greeninvoice version", "version", version)
		},
	}
}
