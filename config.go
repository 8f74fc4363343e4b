package main

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// config holds everything main needs to wire the server. Values come from the
// environment, optionally seeded by a .env file.
type config struct {
	DBURL         string
	Host          string
	Port          string
	JWTSecret     string
	JWTTTL        time.Duration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GinMode       string
}

// loadConfig reads .env (when present) and the process environment. A
// missing .env is fine; a missing DB_URL or JWT_SECRET is not.
func loadConfig() (config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HOST", "localhost")
	v.SetDefault("PORT", "3000")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	v.SetDefault("GIN_MODE", "debug")

	cfg := config{
		DBURL:         v.GetString("DB_URL"),
		Host:          v.GetString("HOST"),
		Port:          v.GetString("PORT"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTTTL:        v.GetDuration("JWT_TTL"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
		GinMode:       v.GetString("GIN_MODE"),
	}
	if cfg.DBURL == "" {
		return config{}, errors.New("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.JWTTTL <= 0 {
		return config{}, errors.New("JWT_TTL must be a positive duration")
	}
	return cfg, nil
}

func (c config) addr() string { return c.Host + ":" + c.Port }
