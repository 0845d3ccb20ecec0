package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AlessioPiovesan/geni-wrapper/pkg/logging"
)

const (
	userConfigDir  = ".config/geni"
	configFileName = "config.yaml"

	// DefaultHost is the Geni API host.
	DefaultHost = "https://www.geni.com"

	// DefaultConnectTimeout bounds the wait for the browser authorization
	// step. Configurable; not a contract.
	DefaultConnectTimeout = 2 * time.Minute
)

// Duration wraps time.Duration so YAML values like "90s" or "2m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the SDK and CLI configuration surface.
type Config struct {
	// AppID is the Geni application key. Required.
	AppID string `yaml:"app_id"`

	// Host is the API host URL.
	Host string `yaml:"host"`

	// Cookies enables persistent on-disk token storage.
	Cookies bool `yaml:"cookies"`

	// Logging enables diagnostic output.
	Logging bool `yaml:"logging"`

	// CallbackPort fixes the local OAuth callback port. 0 binds an
	// ephemeral port.
	CallbackPort int `yaml:"callback_port"`

	// ConnectTimeout bounds how long a connect() flow waits for the
	// browser redirect.
	ConnectTimeout Duration `yaml:"connect_timeout"`
}

// GetDefaultConfigPathOrPanic returns the per-user configuration directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Host:           DefaultHost,
		ConnectTimeout: Duration(DefaultConnectTimeout),
	}
}

// LoadConfig loads configuration from the specified directory, layering
// config.yaml over the defaults. A missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := DefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = Duration(DefaultConnectTimeout)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
