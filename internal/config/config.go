package config

import "os"

type Config struct {
	Port            string
	BackofficeURL   string
	BackofficeToken string
	JWTSecret       string
	RegisterID      string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8082"),
		BackofficeURL:   getEnv("BACKOFFICE_URL", "http://localhost:8081"),
		BackofficeToken: getEnv("BACKOFFICE_TOKEN", ""),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		RegisterID:      getEnv("REGISTER_ID", "00000000-0000-0000-0000-000000000001"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
