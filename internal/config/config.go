package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds environment-based settings for the server.
type Config struct {
	Environment    string `env:"APP_ENV" envDefault:"development"`
	ServerAddress  string `env:"SERVER_ADDRESS" envDefault:":8080"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`
	JWTSecret      string `env:"JWT_SECRET,required"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddress  string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Optional MQTT fanout for TV firmwares that consume a broker instead
	// of the SSE stream. Empty disables it.
	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`

	UseSpaces       bool   `env:"USE_SPACES"`
	SpacesEndpoint  string `env:"SPACES_ENDPOINT"`
	SpacesRegion    string `env:"SPACES_REGION"`
	SpacesBucket    string `env:"SPACES_BUCKET"`
	SpacesCDNURL    string `env:"SPACES_CDN_URL"`
	SpacesAccessKey string `env:"SPACES_ACCESS_KEY"`
	SpacesSecretKey string `env:"SPACES_SECRET_KEY"`
}

// Load reads a local .env if present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.UseSpaces {
		if c.SpacesEndpoint == "" || c.SpacesBucket == "" {
			return fmt.Errorf("USE_SPACES requires SPACES_ENDPOINT and SPACES_BUCKET")
		}
		if c.SpacesAccessKey == "" || c.SpacesSecretKey == "" {
			return fmt.Errorf("USE_SPACES requires SPACES_ACCESS_KEY and SPACES_SECRET_KEY")
		}
	}
	if c.Environment == "production" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}
