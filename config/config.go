// Package config loads service and CLI settings with viper.
// Values come from, in increasing priority: defaults, config.yaml,
// MAILERCLOUD_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	mailercloud "github.com/sanzeeb3/mailercloud-go"
	"github.com/sanzeeb3/mailercloud-go/api"
	"github.com/sanzeeb3/mailercloud-go/rate"
	"github.com/sanzeeb3/mailercloud-go/store"
)

const EnvPrefix = "MAILERCLOUD"

const (
	KeyServerAddr             = "server.addr"
	KeyStoreDriver            = "store.driver"
	KeyStoreDSN               = "store.dsn"
	KeyMailercloudBaseURL     = "mailercloud.base_url"
	KeyMailercloudTimeout     = "mailercloud.timeout"
	KeyMailercloudMaxAttempts = "mailercloud.max_attempts"
	KeyMailercloudMinInterval = "mailercloud.min_interval"
	KeyLogLevel               = "log.level"
)

type Config struct {
	Server      Server      `mapstructure:"server"`
	Store       Store       `mapstructure:"store"`
	Mailercloud Mailercloud `mapstructure:"mailercloud"`
	Log         Log         `mapstructure:"log"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Store struct {
	// Driver is one of memory, sqlite, postgres.
	Driver string `mapstructure:"driver"`
	// DSN is the database file for sqlite and the connection string
	// for postgres.
	DSN string `mapstructure:"dsn"`
}

type Mailercloud struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	// MinInterval spaces outgoing requests; 0 disables limiting.
	MinInterval time.Duration `mapstructure:"min_interval"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with defaults, config file lookup and
// environment binding set up. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyStoreDriver, store.DriverMemory)
	v.SetDefault(KeyStoreDSN, "")
	v.SetDefault(KeyMailercloudBaseURL, api.BaseUrl)
	v.SetDefault(KeyMailercloudTimeout, 10*time.Second)
	v.SetDefault(KeyMailercloudMaxAttempts, 1)
	v.SetDefault(KeyMailercloudMinInterval, time.Duration(0))
	v.SetDefault(KeyLogLevel, "info")
}

// Load reads the config file if there is one and decodes everything
// into a Config. A missing config.yaml is not an error; a missing file
// set explicitly with SetConfigFile is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverSQLite, store.DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%s: required for driver %q", KeyStoreDSN, c.Store.Driver)
		}
	default:
		return fmt.Errorf("%s: unknown driver %q", KeyStoreDriver, c.Store.Driver)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%s: must not be empty", KeyServerAddr)
	}
	if c.Mailercloud.BaseURL == "" {
		return fmt.Errorf("%s: must not be empty", KeyMailercloudBaseURL)
	}
	if c.Mailercloud.Timeout <= 0 {
		return fmt.Errorf("%s: must be positive", KeyMailercloudTimeout)
	}
	if c.Mailercloud.MaxAttempts < 1 {
		return fmt.Errorf("%s: must be at least 1", KeyMailercloudMaxAttempts)
	}
	if c.Mailercloud.MinInterval < 0 {
		return fmt.Errorf("%s: must not be negative", KeyMailercloudMinInterval)
	}
	return nil
}

// ClientOptions translates the mailercloud section into client options.
func (c Config) ClientOptions() []mailercloud.ConfigOption {
	opts := []mailercloud.ConfigOption{
		mailercloud.WithBaseUrl(strings.TrimRight(c.Mailercloud.BaseURL, "/")),
		mailercloud.WithTimeout(c.Mailercloud.Timeout),
		mailercloud.WithRetry(nil, c.Mailercloud.MaxAttempts),
	}
	if c.Mailercloud.MinInterval > 0 {
		opts = append(opts, mailercloud.WithRateLimiter(rate.NewIntervalLimiter(c.Mailercloud.MinInterval)))
	}
	return opts
}
