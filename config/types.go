package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	LogDir      string            `mapstructure:"log_dir"`
	LogPattern  string            `mapstructure:"log_pattern"`
	Backend     string            `mapstructure:"backend"`
	QBittorrent QBittorrentConfig `mapstructure:"qbittorrent"`
	RTorrent    RTorrentConfig    `mapstructure:"rtorrent"`
	Deluge      DelugeConfig      `mapstructure:"deluge"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// QBittorrentConfig holds qBittorrent Web UI connection details
type QBittorrentConfig struct {
	URL           string `mapstructure:"url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	TLSSkipVerify bool   `mapstructure:"tls_skip_verify"`
	BasicUser     string `mapstructure:"basic_user"`
	BasicPass     string `mapstructure:"basic_pass"`
}

// RTorrentConfig holds the base URL serving /RPC2
type RTorrentConfig struct {
	URL string `mapstructure:"url"`
}

// DelugeConfig holds Deluge Web UI connection details
type DelugeConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
}

// MonitorConfig controls the poll loop
type MonitorConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	WindowSize int           `mapstructure:"window_size"`
	Watch      bool          `mapstructure:"watch"`
	Accept     string        `mapstructure:"accept"`
}

// RetryConfig controls retries of authentication and port updates
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
