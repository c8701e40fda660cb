package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI  string
	Database  string
	JWTSecret string
	Port      string
}

// Load reads configuration from the environment, with a .env file as a
// fallback for local runs. JWT_SECRET has no default: tokens signed with a
// guessable key are worthless.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:  os.Getenv("MONGODB_URI"),
		Database:  os.Getenv("MONGODB_DB"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Port:      os.Getenv("PORT"),
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://127.0.0.1:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "sketchboard"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}

	return cfg, nil
}
