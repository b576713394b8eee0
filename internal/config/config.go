// Package config loads daemon settings from defaults, an optional YAML file
// and POWERCLOCK_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. POWERCLOCK_SOURCE_QUEUE.
const EnvPrefix = "POWERCLOCK"

// Config holds all daemon settings.
type Config struct {
	Variant  string         `mapstructure:"variant"`
	Source   SourceConfig   `mapstructure:"source"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Position PositionConfig `mapstructure:"position"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	GPIO     GPIOConfig     `mapstructure:"gpio"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	// CacheSize bounds the number of rendered dials kept in memory.
	CacheSize int `mapstructure:"cache_size"`
}

type SourceConfig struct {
	URL     string        `mapstructure:"url"`
	Queue   string        `mapstructure:"queue"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RefreshConfig struct {
	Data  time.Duration `mapstructure:"data"`
	Frame time.Duration `mapstructure:"frame"`
	// Retry is the frame task delay while no dial exists yet.
	Retry time.Duration `mapstructure:"retry"`
	// Rollover is a cron spec for an extra data refresh when the day
	// changes; empty disables it.
	Rollover string `mapstructure:"rollover"`
}

type AssetsConfig struct {
	// Dir is searched for assets; empty means the working directory.
	Dir string `mapstructure:"dir"`
	// Bundle prefers assets next to the executable.
	Bundle bool `mapstructure:"bundle"`
	// Templates overrides the per-variant template file names.
	Templates []string `mapstructure:"templates"`
	// Font is a TTF/OTF file; empty uses the built-in Go Regular face.
	Font string `mapstructure:"font"`
}

type PositionConfig struct {
	File string `mapstructure:"file"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	// RefreshRate limits POST /refresh, in requests per second.
	RefreshRate  float64 `mapstructure:"refresh_rate"`
	RefreshBurst int     `mapstructure:"refresh_burst"`
}

type MQTTConfig struct {
	Broker string `mapstructure:"broker"`
}

type GPIOConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	PinRefresh int           `mapstructure:"pin_refresh"`
	PinDismiss int           `mapstructure:"pin_dismiss"`
	Poll       time.Duration `mapstructure:"poll"`
	Debounce   time.Duration `mapstructure:"debounce"`
}

type OutputConfig struct {
	// PNG is a file rewritten on every frame; empty disables it.
	PNG    string `mapstructure:"png"`
	EPaper bool   `mapstructure:"epaper"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TemplateNames returns the template files for the configured variant.
func (c *Config) TemplateNames() []string {
	if len(c.Assets.Templates) > 0 {
		return c.Assets.Templates
	}
	if c.Variant == "12h" {
		return []string{"powerClock-AM.png", "powerClock-PM.png"}
	}
	return []string{"powerClock-24-w.png"}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("variant", "24h")

	v.SetDefault("source.url", "https://raw.githubusercontent.com/Baskerville42/outage-data-ua/main/data/kyiv-region.json")
	v.SetDefault("source.queue", "GPV5.1")
	v.SetDefault("source.timeout", 5*time.Second)

	v.SetDefault("refresh.data", 15*time.Minute)
	v.SetDefault("refresh.frame", time.Minute)
	v.SetDefault("refresh.retry", 100*time.Millisecond)
	v.SetDefault("refresh.rollover", "@midnight")

	v.SetDefault("assets.dir", "")
	v.SetDefault("assets.bundle", true)
	v.SetDefault("assets.templates", []string{})
	v.SetDefault("assets.font", "")

	v.SetDefault("position.file", "pos.txt")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.refresh_rate", 0.2)
	v.SetDefault("http.refresh_burst", 2)

	v.SetDefault("mqtt.broker", "")

	v.SetDefault("gpio.enabled", false)
	v.SetDefault("gpio.pin_refresh", 17)
	v.SetDefault("gpio.pin_dismiss", 27)
	v.SetDefault("gpio.poll", 50*time.Millisecond)
	v.SetDefault("gpio.debounce", 100*time.Millisecond)

	v.SetDefault("output.png", "")
	v.SetDefault("output.epaper", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("cache_size", 8)
}

// New returns a viper instance with defaults and environment binding. Callers
// may bind flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional YAML file at path into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside the daemon.
func (c *Config) Validate() error {
	if c.Variant != "12h" && c.Variant != "24h" {
		return fmt.Errorf("variant %q (want 12h or 24h)", c.Variant)
	}
	if c.Refresh.Data <= 0 || c.Refresh.Frame <= 0 || c.Refresh.Retry <= 0 {
		return fmt.Errorf("refresh intervals must be positive")
	}
	if c.Source.Queue == "" {
		return fmt.Errorf("source queue is empty")
	}
	if c.HTTP.RefreshRate <= 0 || c.HTTP.RefreshBurst < 1 {
		return fmt.Errorf("http refresh rate and burst must be positive")
	}
	want := 1
	if c.Variant == "12h" {
		want = 2
	}
	if n := len(c.TemplateNames()); n != want {
		return fmt.Errorf("%s variant needs %d templates, got %d", c.Variant, want, n)
	}
	return nil
}
