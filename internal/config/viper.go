package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Storage struct {
		// DataFile is the YAML snapshot holding statements and suspense
		// entries. Empty keeps everything in memory.
		DataFile string `mapstructure:"data_file" yaml:"data_file"`
		// AutoSave writes the snapshot after every mutation.
		AutoSave bool `mapstructure:"autosave" yaml:"autosave"`
	} `mapstructure:"storage" yaml:"storage"`

	Extraction struct {
		MetadataScanRows    int    `mapstructure:"metadata_scan_rows" yaml:"metadata_scan_rows"`
		HeaderScanRows      int    `mapstructure:"header_scan_rows" yaml:"header_scan_rows"`
		SummaryWindowBefore int    `mapstructure:"summary_window_before" yaml:"summary_window_before"`
		SummaryWindowAfter  int    `mapstructure:"summary_window_after" yaml:"summary_window_after"`
		DefaultCurrency     string `mapstructure:"default_currency" yaml:"default_currency"`
		CSVDelimiter        string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	} `mapstructure:"extraction" yaml:"extraction"`

	Suspense struct {
		UnknownClient      string `mapstructure:"unknown_client" yaml:"unknown_client"`
		DefaultDescription string `mapstructure:"default_description" yaml:"default_description"`
		ReferencePrefix    string `mapstructure:"reference_prefix" yaml:"reference_prefix"`
	} `mapstructure:"suspense" yaml:"suspense"`

	Batch struct {
		Workers int `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"batch" yaml:"batch"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Operator struct {
		ID   string `mapstructure:"id" yaml:"id"`
		Name string `mapstructure:"name" yaml:"name"`
		Role string `mapstructure:"role" yaml:"role"`
	} `mapstructure:"operator" yaml:"operator"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// An explicit configFile takes precedence over the standard search paths.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.bankstmt")
		v.AddConfigPath(".bankstmt")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("BANKSTMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file (optional unless explicitly requested)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 5. The API key is read from the unprefixed variable used by Google tooling
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration made only of defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.data_file", "")
	v.SetDefault("storage.autosave", true)

	v.SetDefault("extraction.metadata_scan_rows", 50)
	v.SetDefault("extraction.header_scan_rows", 100)
	v.SetDefault("extraction.summary_window_before", 5)
	v.SetDefault("extraction.summary_window_after", 10)
	v.SetDefault("extraction.default_currency", "INR")
	v.SetDefault("extraction.csv_delimiter", ",")

	v.SetDefault("suspense.unknown_client", "Unknown Client")
	v.SetDefault("suspense.default_description", "Bank transaction")
	v.SetDefault("suspense.reference_prefix", "SUS")

	v.SetDefault("batch.workers", 4)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("operator.id", "cli")
	v.SetDefault("operator.name", "CLI Operator")
	v.SetDefault("operator.role", "operator")
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}

	if cfg.Extraction.MetadataScanRows < 1 {
		return fmt.Errorf("extraction.metadata_scan_rows must be positive, got: %d", cfg.Extraction.MetadataScanRows)
	}
	if cfg.Extraction.HeaderScanRows < 1 {
		return fmt.Errorf("extraction.header_scan_rows must be positive, got: %d", cfg.Extraction.HeaderScanRows)
	}
	if cfg.Extraction.SummaryWindowBefore < 0 || cfg.Extraction.SummaryWindowAfter < 0 {
		return fmt.Errorf("extraction summary window cannot be negative")
	}

	if len([]rune(cfg.Extraction.CSVDelimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", cfg.Extraction.CSVDelimiter)
	}

	if cfg.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got: %d", cfg.Batch.Workers)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if cfg.AI.TimeoutSeconds < 1 || cfg.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", cfg.AI.TimeoutSeconds)
		}
	}

	return nil
}
