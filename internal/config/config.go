package config

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override the config file,
// e.g. KIOSK_BACKEND_BASE_URL.
const EnvPrefix = "KIOSK"

// Config represents the kiosk configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Backend BackendConfig `yaml:"backend" envconfig:"BACKEND"`
	QR      QRConfig      `yaml:"qr" envconfig:"QR"`
	Kiosk   KioskConfig   `yaml:"kiosk" envconfig:"KIOSK"`
	Log     LogConfig     `yaml:"log" envconfig:"LOG"`
	Metrics MetricsConfig `yaml:"metrics" envconfig:"METRICS"`

	// ConfigPath is the path to the config file (not serialized)
	ConfigPath string `yaml:"-" ignored:"true"`
}

// ServerConfig represents the local server configuration
type ServerConfig struct {
	Port int    `yaml:"port" envconfig:"PORT"`
	Host string `yaml:"host" envconfig:"HOST"`
}

// BackendConfig represents the vending backend connection
type BackendConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL"`
	// Timeout of a single backend request. Zero means no timeout.
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	HealthInterval time.Duration `yaml:"health_interval" envconfig:"HEALTH_INTERVAL"`
	// DispenserID limits the product list to one dispenser. Empty lists all.
	DispenserID string `yaml:"dispenser_id" envconfig:"DISPENSER_ID"`
}

// QRConfig points at the external QR image renderer
type QRConfig struct {
	RendererURL string `yaml:"renderer_url" envconfig:"RENDERER_URL"`
	Size        string `yaml:"size" envconfig:"SIZE"`
}

// KioskConfig sizes the in-memory buffers of the kiosk
type KioskConfig struct {
	HistorySize   int `yaml:"history_size" envconfig:"HISTORY_SIZE"`
	LogBufferSize int `yaml:"log_buffer_size" envconfig:"LOG_BUFFER_SIZE"`
}

// LogConfig controls the logrus output
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"` // "text" or "json"
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:5000",
			HealthInterval: 15 * time.Second,
		},
		QR: QRConfig{
			RendererURL: "https://api.qrserver.com/v1/create-qr-code/",
			Size:        "200x200",
		},
		Kiosk: KioskConfig{
			HistorySize:   50,
			LogBufferSize: 500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// SearchPaths lists the locations Load tries when no explicit path is given
var SearchPaths = []string{
	"config.yaml",
	"configs/config.yaml",
	"/etc/kiosk/config.yaml",
}

// Load loads configuration from path, or from the first readable file in
// SearchPaths when path is empty. A missing file is not an error: defaults are
// used. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	paths := SearchPaths
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if path != "" {
				return nil, errors.Wrapf(err, "read config %s", p)
			}
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", p)
		}
		cfg.ConfigPath = p
		break
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads a .env file if present and overrides cfg with KIOSK_* variables.
// Variables that are not set leave the current values untouched.
func ApplyEnv(cfg *Config) error {
	// .env is optional; production sets real environment variables
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return errors.Wrap(err, "apply environment overrides")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	return os.WriteFile(path, data, 0644)
}

// Addr returns the listen address of the local server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
