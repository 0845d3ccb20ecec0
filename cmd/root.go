package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlessioPiovesan/geni-wrapper/internal/config"
	"github.com/AlessioPiovesan/geni-wrapper/pkg/geni"
	"github.com/AlessioPiovesan/geni-wrapper/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

// Persistent flags shared by all commands.
var (
	appIDFlag   string
	hostFlag    string
	configFlag  string
	cookiesFlag bool
	verboseFlag bool
)

// rootCmd represents the base command for the geni CLI.
var rootCmd = &cobra.Command{
	Use:   "geni",
	Short: "Authenticate to and call the Geni API",
	Long: `geni is a small client for the Geni genealogy platform.

It handles browser-based OAuth authorization, stores the resulting access
token, and lets you call arbitrary API endpoints from the command line.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&appIDFlag, "app-id", "", "Geni application ID (overrides config)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "API host URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration directory (default ~/.config/geni)")
	rootCmd.PersistentFlags().BoolVar(&cookiesFlag, "cookies", false, "Persist the access token on disk")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable diagnostic output")
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "geni version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes for scripting.
func getExitCode(err error) int {
	if errors.Is(err, geni.ErrUnauthenticated) {
		return ExitCodeAuthRequired
	}

	var authErr *geni.AuthorizationError
	if errors.As(err, &authErr) || errors.Is(err, geni.ErrTimeout) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// loadConfig layers command-line flags over the configuration file and
// initializes logging.
func loadConfig() (config.Config, error) {
	configDir := configFlag
	if configDir == "" {
		configDir = config.GetDefaultConfigPathOrPanic()
	}

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return config.Config{}, err
	}

	if appIDFlag != "" {
		cfg.AppID = appIDFlag
	}
	if hostFlag != "" {
		cfg.Host = hostFlag
	}
	if cookiesFlag {
		cfg.Cookies = true
	}
	if verboseFlag {
		cfg.Logging = true
	}

	level := logging.LevelWarn
	if cfg.Logging {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	return cfg, nil
}

// newSDK builds the SDK from the resolved configuration.
func newSDK(cfg config.Config) (*geni.SDK, error) {
	return geni.New(geni.Config{
		AppID:          cfg.AppID,
		Host:           cfg.Host,
		Cookies:        cfg.Cookies,
		Logging:        cfg.Logging,
		CallbackPort:   cfg.CallbackPort,
		ConnectTimeout: cfg.ConnectTimeout.Duration(),
	})
}
