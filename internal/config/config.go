// Package config loads protnet configuration from defaults, a YAML file, environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	DefaultConfigFile = "protnet.yaml"
	EnvPrefix         = "PROTNET_"
)

type Config struct {
	// Address is the ip:port the webserver binds to.
	Address   string `koanf:"address" validate:"required,hostname_port"`
	StaticDir string `koanf:"static_dir" validate:"required"`

	// EnrichmentURL is the base URL of the backend serving /api/subgraph/enrichment.
	// Enrichment is disabled when it is empty.
	EnrichmentURL     string        `koanf:"enrichment_url" validate:"omitempty,url"`
	EnrichmentTimeout time.Duration `koanf:"enrichment_timeout" validate:"gt=0"`

	LogLevel        string `koanf:"log_level" validate:"oneof=debug info warn error"`
	MaxConnections  int    `koanf:"max_connections" validate:"gte=1"`
	MaxMessageBytes int64  `koanf:"max_message_bytes" validate:"gte=1024"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"address":            "127.0.0.1:8080",
		"static_dir":         "public",
		"enrichment_url":     "",
		"enrichment_timeout": "30s",
		"log_level":          "info",
		"max_connections":    256,
		"max_message_bytes":  32 << 20,
	}
}

var validate = validator.New()

// Load builds a Config. Precedence, highest first: flags that were set, PROTNET_
// environment variables, cfgFile (or protnet.yaml if it exists), defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// PROTNET_ENRICHMENT_URL -> enrichment_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg's struct tags and reports every failing field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("address", "b", "127.0.0.1:8080", "the ip:port to bind the webserver to")
	fs.StringP("static-dir", "d", "public", "the directory to serve static files from")
	fs.String("enrichment-url", "", "base URL of the functional enrichment backend")
	fs.Duration("enrichment-timeout", 30*time.Second, "timeout for a single enrichment request")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.Int("max-connections", 256, "maximum number of simultaneous connections")
}
