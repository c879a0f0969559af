package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Adapter names accepted in device.adapter
const (
	AdapterGoBLE  = "goble"
	AdapterTinyGo = "tinygo"
)

// Config holds application configuration
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Log     LogConfig     `yaml:"log"`
	Monitor MonitorConfig `yaml:"monitor"`
}

type DeviceConfig struct {
	Address        string        `yaml:"address"`
	Adapter        string        `yaml:"adapter" default:"goble"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"30s"`
}

type LogConfig struct {
	Level string `yaml:"level" default:"info"`
}

type MonitorConfig struct {
	// Buffer is the number of notifications held between the BLE callback and the printer
	Buffer int    `yaml:"buffer" default:"256"`
	Format string `yaml:"format" default:"text"` // text, json
}

// Default returns default configuration values
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	// go-ble only has a CoreBluetooth backend here
	if runtime.GOOS != "darwin" {
		cfg.Device.Adapter = AdapterTinyGo
	}
	return cfg
}

// Load reads a YAML config file over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks field values
func (c *Config) Validate() error {
	switch c.Device.Adapter {
	case AdapterGoBLE, AdapterTinyGo:
	default:
		return fmt.Errorf("device.adapter must be %q or %q, got %q", AdapterGoBLE, AdapterTinyGo, c.Device.Adapter)
	}

	if c.Device.ConnectTimeout <= 0 {
		return fmt.Errorf("device.connect_timeout must be > 0")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if c.Monitor.Buffer <= 0 {
		return fmt.Errorf("monitor.buffer must be > 0")
	}

	switch c.Monitor.Format {
	case "text", "json":
	default:
		return fmt.Errorf("monitor.format must be \"text\" or \"json\", got %q", c.Monitor.Format)
	}

	return nil
}

// NewLogger creates a configured logger instance.
// An unparsable level leaves the logger at info.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
