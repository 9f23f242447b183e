package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	LogLevel         string `env:"LOG_LEVEL" envDefault:"INFO"`
	ListenAddr       string `env:"LISTEN_ADDR" envDefault:"0.0.0.0:8000"`
	DatabaseURL      string `env:"DATABASE_URL"`
	MigrationsFolder string `env:"MIGRATIONS_FOLDER"`
	InventoryFile    string `env:"CONFIG_FILE" envDefault:"config.yaml"`
	// CronTimezone is prefixed to every schedule, e.g. "CRON_TZ=Europe/Berlin 0 7 * * *".
	CronTimezone string `env:"CRON_TIMEZONE" envDefault:"Local"`

	TradfriCfg     *TradfriConfig     `envPrefix:"TRADFRI_"`
	MqttCfg        *MqttConfig        `envPrefix:"MQTT_"`
	RFCfg          *RFConfig          `envPrefix:"RF_"`
	TemperatureCfg *TemperatureConfig `envPrefix:"TEMPERATURE_"`
	DashCfg        *DashConfig        `envPrefix:"DASH_"`
}

type TradfriConfig struct {
	Gateway        string `env:"GATEWAY"`
	User           string `env:"USER"`
	PSK            string `env:"PSK"`
	Binary         string `env:"COAP_CLIENT" envDefault:"coap-client"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"10"`
}

// Enabled reports whether a gateway is configured at all.
func (c *TradfriConfig) Enabled() bool {
	return c != nil && c.Gateway != ""
}

type MqttConfig struct {
	Host     string `env:"HOST"`
	Username string `env:"USER"`
	Password string `env:"PASS"`
}

type RFConfig struct {
	CodesendBinary string        `env:"CODESEND" envDefault:"codesend"`
	SnifferBinary  string        `env:"SNIFFER" envDefault:"RFSniffer"`
	Debounce       time.Duration `env:"DEBOUNCE" envDefault:"2s"`
}

type TemperatureConfig struct {
	DevicesPath    string        `env:"DEVICES_PATH" envDefault:"/sys/bus/w1/devices"`
	RecordInterval time.Duration `env:"RECORD_INTERVAL" envDefault:"10m"`
	Retention      time.Duration `env:"RETENTION" envDefault:"8760h"`
}

type DashConfig struct {
	ListenAddr string        `env:"LISTEN_ADDR" envDefault:":67"`
	Debounce   time.Duration `env:"DEBOUNCE" envDefault:"10s"`
}

// Load reads the process configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		TradfriCfg:     &TradfriConfig{},
		MqttCfg:        &MqttConfig{},
		RFCfg:          &RFConfig{},
		TemperatureCfg: &TemperatureConfig{},
		DashCfg:        &DashConfig{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.TradfriCfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("TRADFRI_TIMEOUT_SECONDS must be positive, got %d", cfg.TradfriCfg.TimeoutSeconds)
	}
	if cfg.TemperatureCfg.RecordInterval < time.Second {
		return nil, fmt.Errorf("TEMPERATURE_RECORD_INTERVAL must be at least one second, got %s", cfg.TemperatureCfg.RecordInterval)
	}
	return cfg, nil
}

// CronSpec prefixes schedule with the configured timezone.
func (c *Config) CronSpec(schedule string) string {
	if c.CronTimezone == "" {
		return schedule
	}
	return "CRON_TZ=" + c.CronTimezone + " " + schedule
}
