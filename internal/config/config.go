package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL    string
	JWTKey         string
	Addr           string
	AllowedOrigins []string
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTKey:      os.Getenv("JWT_KEY"),
		Addr:        os.Getenv("ADDR"),
	}

	if cfg.DatabaseURL == "" || cfg.JWTKey == "" {
		log.Fatal("Required environment variables DATABASE_URL or JWT_KEY are not set.")
	}

	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(o))
		}
	}

	return cfg
}
