// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/bankstmt/internal/config"
	"fjacquet/bankstmt/internal/container"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// DefaultDataFile is used when neither --data nor storage.data_file is set.
const DefaultDataFile = "~/.bankstmt/data.yaml"

// CommonFlags represents the flags shared by every command
type CommonFlags struct {
	ConfigFile string
	DataFile   string
	User       string
	LogLevel   string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppConfig is the loaded configuration
	AppConfig *config.Config

	// AppContainer holds the wired services for the running command
	AppContainer *container.Container

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "bankstmt",
		Short: "Extract bank statements and reconcile suspense entries.",
		Long: `bankstmt reads bank statement spreadsheets (CSV, XLSX, XLS) of unknown layout,
extracts account metadata, transactions and summary totals, and keeps a suspense
ledger of transactions awaiting reconciliation.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if AppContainer != nil {
				return nil
			}
			return Setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Teardown()
		},
	}
)

// Init initializes the root command's persistent flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default $HOME/.bankstmt/config.yaml)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.DataFile, "data", "", "Data file holding statements and suspense entries (default "+DefaultDataFile+")")
	Cmd.PersistentFlags().StringVar(&SharedFlags.User, "user", "", "Operator user id recorded on changes")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

// Setup loads the configuration, applies flag overrides and wires the
// container.
func Setup() error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if SharedFlags.DataFile != "" {
		cfg.Storage.DataFile = SharedFlags.DataFile
	}
	if cfg.Storage.DataFile == "" {
		cfg.Storage.DataFile = DefaultDataFile
	}
	if SharedFlags.User != "" {
		cfg.Operator.ID = SharedFlags.User
		cfg.Operator.Name = SharedFlags.User
	}
	if SharedFlags.LogLevel != "" {
		if _, err := logrus.ParseLevel(SharedFlags.LogLevel); err != nil {
			return fmt.Errorf("invalid log level: %s", SharedFlags.LogLevel)
		}
		cfg.Log.Level = SharedFlags.LogLevel
	}

	Log = config.ConfigureLoggingFromConfig(cfg)
	c, err := container.NewContainerWithLogger(cfg, logging.NewLogrusAdapterFromLogger(Log))
	if err != nil {
		return err
	}

	AppConfig = cfg
	AppContainer = c
	return nil
}

// Teardown flushes and releases the container. Cobra skips
// PersistentPostRun when a command fails, so main calls it again after
// Execute. It is a no-op once the container is gone.
func Teardown() {
	if AppContainer == nil {
		return
	}
	if err := AppContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close application resources")
	}
	AppContainer = nil
}

// GetLogger returns the command logger behind the logging interface.
func GetLogger() logging.Logger {
	if AppContainer != nil {
		return AppContainer.GetLogger()
	}
	return logging.NewLogrusAdapterFromLogger(Log)
}

// GetContainer returns the container, or an error when Setup has not run.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return AppContainer, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return AppConfig
}

// Operator returns the identity used for mutating commands.
func Operator() models.Identity {
	if AppContainer == nil {
		return models.Identity{}
	}
	return AppContainer.Operator()
}
