// Package config loads the layered configuration every ambient and domain
// component reads from: built-in defaults, an optional config.yaml, and
// DOORCORE_-prefixed environment variables, watched for hot reload the same
// way the pack's service layer watches its own config file.
package config

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration tree, unmarshaled by viper via
// mapstructure tags.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	GPIO   GPIOConfig   `mapstructure:"gpio"`
	I2C    I2CConfig    `mapstructure:"i2c"`
	KeyPad KeyPadConfig `mapstructure:"keypad"`
	Notify NotifyConfig `mapstructure:"notify"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ServerConfig is the TCP listen endpoint for the dispatcher.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// GPIOConfig carries the pin mapping for the door strike and keypad matrix
// (§6's "observed defaults... SHOULD expose them as configuration").
type GPIOConfig struct {
	DoorPin    int    `mapstructure:"door_pin" yaml:"door_pin"`
	KeypadRows []int  `mapstructure:"keypad_rows" yaml:"keypad_rows"`
	KeypadCols []int  `mapstructure:"keypad_cols" yaml:"keypad_cols"`
}

// I2CConfig addresses the PN532 bus.
type I2CConfig struct {
	Bus     string `mapstructure:"bus"`
	Address int    `mapstructure:"address"`
}

// KeyPadConfig carries the code persistence path.
type KeyPadConfig struct {
	CodeFile string `mapstructure:"code_file" yaml:"code_file"`
}

// NotifyConfig carries the Twilio credentials and recipient number. Each
// field is also individually overridable by the bare environment variable
// named in spec.md §6 (TO_NUMBER, TWILIO_ACCOUNT_SID, ...) for drop-in
// compatibility with the gateway's deployment scripts, applied after viper
// resolves the DOORCORE_-prefixed form.
type NotifyConfig struct {
	ToNumber         string `mapstructure:"to_number" yaml:"to_number"`
	TwilioAccountSID string `mapstructure:"twilio_account_sid" yaml:"twilio_account_sid"`
	TwilioAPIKey     string `mapstructure:"twilio_api_key" yaml:"twilio_api_key"`
	TwilioAPIKeySecret string `mapstructure:"twilio_api_key_secret" yaml:"twilio_api_key_secret"`
	TwilioPhoneNumber string `mapstructure:"twilio_phone_number" yaml:"twilio_phone_number"`
}

// LoggerConfig configures internal/logger.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

// Load reads configuration from configPath (or the default search path if
// empty), applying defaults, file, and environment overrides in that
// priority order. If no config file is found anywhere, a default one is
// written to ./config.yaml so there is something for an operator to edit.
func Load(configPath string) (*Config, error) {
	v := viper.GetViper()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config: %w", err)
		}
		if writeErr := writeDefaultConfigFile("config.yaml"); writeErr != nil {
			return nil, fmt.Errorf("config: write default config: %w", writeErr)
		}
	}

	v.SetEnvPrefix("DOORCORE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	applyBareEnvOverrides(&cfg)
	return &cfg, nil
}

// Watch installs a hot-reload callback on the package-level viper instance
// used by Load, backed by fsnotify. The callback receives the re-read
// Config; actors read their pin numbers, I2C bus and seeded phone number
// once at construction and use fixed tick periods, so a reload does not
// remap pins or retune timing of running actors, and never resets
// in-flight actor state (door lock state, candidate buffer).
func Watch(onChange func(*Config)) {
	v := viper.GetViper()
	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		applyBareEnvOverrides(&cfg)
		onChange(&cfg)
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 2000)

	v.SetDefault("gpio.door_pin", 48)
	v.SetDefault("gpio.keypad_rows", []int{3, 2, 15, 115})
	v.SetDefault("gpio.keypad_cols", []int{66, 67, 69, 68})

	v.SetDefault("i2c.bus", "/dev/i2c-2")
	v.SetDefault("i2c.address", 0x24)

	v.SetDefault("keypad.code_file", "./code")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.dir", "")
}

func applyBareEnvOverrides(cfg *Config) {
	if v := os.Getenv("TO_NUMBER"); v != "" {
		cfg.Notify.ToNumber = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Notify.TwilioAccountSID = v
	}
	if v := os.Getenv("TWILIO_API_KEY"); v != "" {
		cfg.Notify.TwilioAPIKey = v
	}
	if v := os.Getenv("TWILIO_API_KEY_SECRET"); v != "" {
		cfg.Notify.TwilioAPIKeySecret = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		cfg.Notify.TwilioPhoneNumber = v
	}
}

func writeDefaultConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	def := Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 2000},
		GPIO: GPIOConfig{
			DoorPin:    48,
			KeypadRows: []int{3, 2, 15, 115},
			KeypadCols: []int{66, 67, 69, 68},
		},
		I2C:    I2CConfig{Bus: "/dev/i2c-2", Address: 0x24},
		KeyPad: KeyPadConfig{CodeFile: "./code"},
		Logger: LoggerConfig{Level: "info", Format: "console"},
	}
	out, err := yaml.Marshal(def)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}
