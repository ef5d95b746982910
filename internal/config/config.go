package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting, populated from the environment
// (plus a local .env file in development).
type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN" default:"host=localhost user=user password=password dbname=chatlinkdb port=5432 sslmode=disable"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"72"`
	ClientURL     string `envconfig:"CLIENT_URL" default:"http://localhost:5173"`
}

// Load reads the optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
