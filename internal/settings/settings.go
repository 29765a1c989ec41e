// Package settings loads rocketd daemon settings from defaults, an optional
// config file and ROCKETD_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. ROCKETD_HTTP_ADDR.
const EnvPrefix = "ROCKETD"

type Settings struct {
	GRPCAddr  string `mapstructure:"grpc_addr"`
	HTTPAddr  string `mapstructure:"http_addr"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Catalog is the engine catalog YAML served by the daemon.
	Catalog string `mapstructure:"catalog"`
	// Optimizer is the optional search options YAML.
	Optimizer string `mapstructure:"optimizer"`

	Archive ArchiveSettings `mapstructure:"archive"`
	Influx  InfluxSettings  `mapstructure:"influx"`
}

type ArchiveSettings struct {
	Enabled         bool   `mapstructure:"enabled"`
	DSN             string `mapstructure:"dsn"`
	ConnectAttempts int    `mapstructure:"connect_attempts"`
}

type InfluxSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grpc_addr", ":50051")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("catalog", "config/engines.yaml")
	v.SetDefault("optimizer", "")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.dsn", "")
	v.SetDefault("archive.connect_attempts", 5)

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "rocketry")
	v.SetDefault("influx.bucket", "designs")
}

// Load reads settings. With an empty configFile it looks for rocketd.yaml in
// the working directory and /etc/rocketd, and a missing file is not an error.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("rocketd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/rocketd")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the enabled sinks are usable.
func (s *Settings) Validate() error {
	if s.GRPCAddr == "" && s.HTTPAddr == "" {
		return errors.New("at least one of grpc_addr and http_addr is required")
	}
	if s.Catalog == "" {
		return errors.New("catalog path is required")
	}
	switch s.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log_format %q", s.LogFormat)
	}
	if s.Influx.Enabled {
		if s.Influx.URL == "" || s.Influx.Org == "" || s.Influx.Bucket == "" {
			return errors.New("influx url, org and bucket are required when influx is enabled")
		}
	}
	return nil
}
