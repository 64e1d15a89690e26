package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	Port    string        `mapstructure:"port"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Device  DeviceConfig  `mapstructure:"device"`
	Poller  PollerConfig  `mapstructure:"poller"`
	Profile ProfileConfig `mapstructure:"profile"`
	Auth    AuthConfig    `mapstructure:"auth"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// DeviceConfig points at the device-control service.
type DeviceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // connect and start_process calls
}

type PollerConfig struct {
	Cadence      time.Duration `mapstructure:"cadence"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// LinkLossThreshold downgrades the link after this many consecutive
	// failed fetches. Zero disables the downgrade.
	LinkLossThreshold int `mapstructure:"link_loss_threshold"`
}

type ProfileConfig struct {
	DefaultAmbientC float64 `mapstructure:"default_ambient_c"`
}

type AuthConfig struct {
	SigningKey      string        `mapstructure:"signing_key"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	LegacyPlaintext bool          `mapstructure:"legacy_plaintext"`
	Users           []Credential  `mapstructure:"users"`
	LoginRate       float64       `mapstructure:"login_rate"` // attempts per second
	LoginBurst      int           `mapstructure:"login_burst"`
}

// Credential seeds one operator account at startup.
type Credential struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// MQTTConfig enables telemetry publishing when Broker is set.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

const envPrefix = "HEATER"

// Load reads config.yml from the given directories, applies HEATER_* env
// overrides and fills defaults for anything left unset.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "app.db")

	v.SetDefault("device.base_url", "http://localhost:5001")
	v.SetDefault("device.timeout", 10*time.Second)

	v.SetDefault("poller.cadence", time.Second)
	v.SetDefault("poller.fetch_timeout", 5*time.Second)
	v.SetDefault("poller.link_loss_threshold", 0)

	v.SetDefault("profile.default_ambient_c", 25.0)

	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.legacy_plaintext", false)
	v.SetDefault("auth.login_rate", 1.0)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("mqtt.topic", "heater/telemetry")
	v.SetDefault("mqtt.client_id", "heater-control")
}
