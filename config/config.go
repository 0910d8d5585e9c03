package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Words    WordServiceConfig
	Auth     AuthConfig
	Game     GameConfig
}

type ServerConfig struct {
	HTTPPort string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Queue    string
}

type WordServiceConfig struct {
	BaseURL string
}

type AuthConfig struct {
	JWTSecret string
}

type GameConfig struct {
	DefaultWordLimit      int
	DefaultGlobalSeconds  int
	DefaultPerWordSeconds int
}

func Load() *Config {
	// Missing .env is fine, env vars may come from the environment itself.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			HTTPPort: getEnv("HTTP_PORT", "8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "postgres"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "spelling"),
			Password: getEnv("DB_PASSWORD", "spelling_password"),
			DBName:   getEnv("DB_NAME", "spelling"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "redis"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", "rabbitmq"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			Queue:    getEnv("RABBITMQ_RESULTS_QUEUE", "results.recorded"),
		},
		Words: WordServiceConfig{
			BaseURL: getEnv("WORDS_SERVICE_URL", "http://localhost:5000/api"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		},
		Game: GameConfig{
			DefaultWordLimit:      getEnvAsInt("GAME_WORD_LIMIT", 15),
			DefaultGlobalSeconds:  getEnvAsInt("GAME_GLOBAL_SECONDS", 60),
			DefaultPerWordSeconds: getEnvAsInt("GAME_PER_WORD_SECONDS", 30),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
