package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string
	GinMode    string

	JWTSecret       string
	AccessTokenTTL  int // minutes
	RefreshTokenTTL int // days

	SuperUserEmail    string
	SuperUserPassword string
	SuperUserName     string

	PublicBaseURL string
}

func Load() *Config {
	// Missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "crmuser"),
		DBPassword: getEnv("DB_PASSWORD", "crmpassword"),
		DBName:     getEnv("DB_NAME", "crm"),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AccessTokenTTL:  getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 60),
		RefreshTokenTTL: getEnvInt("REFRESH_TOKEN_TTL_DAYS", 7),

		SuperUserEmail:    getEnv("SUPER_USER_EMAIL", ""),
		SuperUserPassword: getEnv("SUPER_USER_PASSWORD", ""),
		SuperUserName:     getEnv("SUPER_USER_NAME", "Super Admin"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
