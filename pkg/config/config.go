package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string `validate:"oneof=development production test"`

	Log     LogConfig
	Reports ReportsConfig
	Metrics MetricsConfig
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
	File   string `validate:"required"`
	Stderr bool
}

// ReportsConfig configures classroom report exports.
type ReportsConfig struct {
	Enabled    bool
	StorageDir string `validate:"required_if=Enabled true"`
}

// MetricsConfig toggles in-process operation metrics.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = strings.ToLower(v.GetString("ENV"))

	cfg.Log = LogConfig{
		Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
		Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		File:   strings.TrimSpace(v.GetString("LOG_FILE")),
		Stderr: v.GetBool("LOG_STDERR"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:    v.GetBool("ENABLE_REPORTS"),
		StorageDir: strings.TrimSpace(v.GetString("REPORTS_DIR")),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_FILE", "virtual_classroom.log")
	v.SetDefault("LOG_STDERR", false)

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_DIR", "./exports")

	v.SetDefault("ENABLE_METRICS", true)
}
