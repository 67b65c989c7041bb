package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string `mapstructure:"PORT"`
	Env           string `mapstructure:"ENV"`
	DataDir       string `mapstructure:"DATA_DIR"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	OllamaHost    string `mapstructure:"OLLAMA_HOST"`
	OllamaModel   string `mapstructure:"OLLAMA_MODEL"`
	STTServiceURL string `mapstructure:"STT_SERVICE_URL"`
	STTLanguage   string `mapstructure:"STT_LANGUAGE"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("STORAGE_DRIVER", "file")
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("OLLAMA_MODEL", "gemma3:4b")
	v.SetDefault("STT_SERVICE_URL", "http://localhost:8000/transcribe")
	v.SetDefault("STT_LANGUAGE", "es-ES")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATA_DIR")
	v.BindEnv("STORAGE_DRIVER")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("OLLAMA_HOST")
	v.BindEnv("OLLAMA_MODEL")
	v.BindEnv("STT_SERVICE_URL")
	v.BindEnv("STT_LANGUAGE")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch cfg.StorageDriver {
	case "file":
		// DATA_DIR always has a default
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want file or postgres)", cfg.StorageDriver)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
