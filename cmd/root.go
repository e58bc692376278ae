package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/portsync/config"
	"github.com/s0up4200/portsync/filter"
	"github.com/s0up4200/portsync/metrics"
	"github.com/s0up4200/portsync/retry"
	"github.com/s0up4200/portsync/vpnlog"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger

	// Command flags
	verbose bool

	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "portsync",
	Short: "Keep a torrent client's listening port in sync with a VPN forwarded port",
	Long: `portsync watches the log directory of a VPN client, picks up the forwarded
port it announces and applies it as the listening port of qBittorrent, rTorrent
or Deluge. It runs until interrupted.`,
	SilenceUsage: true,
	PreRunE:      initializeApp(config.RequireAll),
	RunE:         runMonitor,
}

// SetVersion records the build information shown by the version command
func SetVersion(v, built string) {
	rootCmd.Version = v
	buildTime = built
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug details")
	rootCmd.PersistentFlags().String("log-dir", "", "directory holding the VPN client's logs")
	rootCmd.PersistentFlags().String("log-pattern", "", "glob restricting which log files are considered")
	rootCmd.PersistentFlags().String("backend", "", "torrent client: qbittorrent, rtorrent or deluge")
	rootCmd.PersistentFlags().Duration("interval", 0, "time between polls (default 60s)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newSelfUpdateCmd())
}

// initializeApp returns a PreRunE that loads the configuration, validating
// the settings the command needs, and sets up logging
func initializeApp(req config.Requirement) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags(), req)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = setupLogger(cfg.Logging, verbose)

		return nil
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, verbose bool) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func newLocator() *vpnlog.Locator {
	var opts []vpnlog.LocatorOption
	if cfg.LogPattern != "" {
		opts = append(opts, vpnlog.WithPattern(cfg.LogPattern))
	}
	return vpnlog.NewLocator(cfg.LogDir, opts...)
}

func newExtractor() *vpnlog.Extractor {
	return vpnlog.NewExtractor(vpnlog.WithWindowSize(cfg.Monitor.WindowSize))
}

func newGuard() (*filter.Guard, error) {
	guard, err := filter.CompileGuard(cfg.Monitor.Accept)
	if err != nil {
		return nil, fmt.Errorf("invalid monitor.accept expression: %w", err)
	}
	return guard, nil
}

func newExecutor(recorder *metrics.Recorder) *retry.Executor {
	policy := retry.Policy{
		Attempts: uint(cfg.Retry.Attempts),
		Delay:    cfg.Retry.Delay,
		Timeout:  cfg.Retry.Timeout,
	}
	return retry.New(policy, logger, retry.WithRetryObserver(func(uint, error) {
		recorder.RetryAttempt()
	}))
}
