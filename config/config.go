package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string `mapstructure:"ENV"`
	Port            string `mapstructure:"PORT"`
	DBDSN           string `mapstructure:"DB_DSN"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	JWTExpiresHours int    `mapstructure:"JWT_EXPIRES_HOURS"`
	FrontendURL     string `mapstructure:"FRONTEND_URL"`
}

var AppConfig *Config

func LoadConfig() error {
	viper.SetDefault("ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_DSN", "codehub.db")
	viper.SetDefault("JWT_SECRET", "dev-secret-do-not-use-in-production")
	viper.SetDefault("JWT_EXPIRES_HOURS", 24)
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return err
	}

	// The baked-in defaults are for development only.
	if cfg.Env == "production" {
		if os.Getenv("DB_DSN") == "" {
			return errors.New("DB_DSN environment variable is required in production")
		}
		if os.Getenv("JWT_SECRET") == "" {
			return errors.New("JWT_SECRET environment variable is required in production")
		}
	}

	AppConfig = &cfg
	return nil
}
