package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	fileName  = ".lfiam"
	fileType  = "yaml"
	envPrefix = "LFIAM"
)

// Config holds the defaults a run starts from. Flags override env, env overrides the file.
type Config struct {
	Profile          string        `mapstructure:"profile"`
	Region           string        `mapstructure:"region"`
	LogLevel         zapcore.Level `mapstructure:"log_level"`
	RetryMaxAttempts int           `mapstructure:"retry_max_attempts"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// Keys lists every key accepted by `config set`.
var Keys = []string{"profile", "region", "log_level", "retry_max_attempts", "timeout"}

// flagNames maps config keys to the cobra flags that can override them.
var flagNames = map[string]string{
	"profile":   "profile",
	"region":    "region",
	"log_level": "log-level",
}

var ErrUnknownKey = errors.New("unknown configuration key")

func newViper() (*viper.Viper, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(home)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, key := range Keys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("log_level", "warn")
	v.SetDefault("retry_max_attempts", 0)
	v.SetDefault("timeout", "0s")
	return v, nil
}

func readIn(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, err
	}
	if cfg.RetryMaxAttempts < 0 {
		return Config{}, fmt.Errorf("retry_max_attempts must not be negative, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.Timeout < 0 {
		return Config{}, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}

// Load resolves the effective configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	if err := readIn(v); err != nil {
		return Config{}, err
	}
	return decode(v)
}

// Set persists a single key into the config file, creating it when missing.
func Set(key string, value string) (Config, error) {
	if !slices.Contains(Keys, key) {
		return Config{}, fmt.Errorf("%w %q", ErrUnknownKey, key)
	}

	v, err := newViper()
	if err != nil {
		return Config{}, err
	}
	if err := readIn(v); err != nil {
		return Config{}, err
	}

	v.Set(key, value)
	cfg, err := decode(v)
	if err != nil {
		return Config{}, fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := v.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, v.SafeWriteConfig()
		}
		return Config{}, err
	}
	return cfg, nil
}

// Path is where Set writes to.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fileName+"."+fileType), nil
}
