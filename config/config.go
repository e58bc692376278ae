package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. PORTSYNC_DELUGE_PASSWORD
const EnvPrefix = "PORTSYNC"

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"log-dir":     "log_dir",
	"log-pattern": "log_pattern",
	"backend":     "backend",
	"interval":    "monitor.interval",
}

// Requirement selects the settings a command depends on
type Requirement uint8

const (
	// RequireLogs validates log_dir and log_pattern
	RequireLogs Requirement = 1 << iota
	// RequireBackend validates the backend name and its connection settings
	RequireBackend

	// RequireAll is what the monitor needs
	RequireAll = RequireLogs | RequireBackend
)

// Load loads the configuration from file, environment and flags and validates
// the settings named by req. Without an explicit path a missing config file is
// not an error.
func Load(configPath string, flags *pflag.FlagSet, req Requirement) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".portsync"))
		}

		// Check /etc
		v.AddConfigPath("/etc/portsync/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	// Validate configuration
	if err := validate(&cfg, req); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_dir", "")
	v.SetDefault("log_pattern", "")
	v.SetDefault("backend", "qbittorrent")

	// Backend defaults
	v.SetDefault("qbittorrent.url", "http://localhost:8080")
	v.SetDefault("qbittorrent.username", "")
	v.SetDefault("qbittorrent.password", "")
	v.SetDefault("qbittorrent.tls_skip_verify", false)
	v.SetDefault("qbittorrent.basic_user", "")
	v.SetDefault("qbittorrent.basic_pass", "")
	v.SetDefault("rtorrent.url", "http://localhost:8000")
	v.SetDefault("deluge.url", "http://localhost:8112/json")
	v.SetDefault("deluge.password", "")

	// Monitor defaults
	v.SetDefault("monitor.interval", "60s")
	v.SetDefault("monitor.window_size", 8192)
	v.SetDefault("monitor.watch", false)
	v.SetDefault("monitor.accept", "")

	// Retry defaults
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", "5s")
	v.SetDefault("retry.timeout", "30s")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9834")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validBackends lists the supported torrent clients
var validBackends = map[string]bool{
	"qbittorrent": true,
	"rtorrent":    true,
	"deluge":      true,
}

// validate checks if the configuration is valid. Log and backend settings
// are only checked when req asks for them.
func validate(cfg *Config, req Requirement) error {
	if req&RequireLogs != 0 {
		if err := validateLogs(cfg); err != nil {
			return err
		}
	}

	if req&RequireBackend != 0 {
		if err := validateBackend(cfg); err != nil {
			return err
		}
	}

	if cfg.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if cfg.Monitor.WindowSize <= 0 {
		return fmt.Errorf("monitor.window_size must be positive")
	}

	if cfg.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}
	if cfg.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative")
	}
	if cfg.Retry.Timeout < 0 {
		return fmt.Errorf("retry.timeout must not be negative")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

func validateLogs(cfg *Config) error {
	if cfg.LogDir == "" {
		return fmt.Errorf("log_dir is required")
	}

	if cfg.LogPattern != "" {
		if _, err := filepath.Match(cfg.LogPattern, ""); err != nil {
			return fmt.Errorf("invalid log_pattern: %w", err)
		}
	}

	return nil
}

func validateBackend(cfg *Config) error {
	if !validBackends[cfg.Backend] {
		return fmt.Errorf("invalid backend: %s (must be 'qbittorrent', 'rtorrent' or 'deluge')", cfg.Backend)
	}

	switch cfg.Backend {
	case "qbittorrent":
		if cfg.QBittorrent.URL == "" {
			return fmt.Errorf("qbittorrent.url is required")
		}
	case "rtorrent":
		if cfg.RTorrent.URL == "" {
			return fmt.Errorf("rtorrent.url is required")
		}
	case "deluge":
		if cfg.Deluge.URL == "" {
			return fmt.Errorf("deluge.url is required")
		}
		if cfg.Deluge.Password == "" {
			return fmt.Errorf("deluge.password is required")
		}
	}

	return nil
}
