package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Topics   TopicConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type LLMConfig struct {
	APIURL       string
	APIKey       string
	Model        string
	TimeoutMs    int
	SystemPrompt string
}

type TopicConfig struct {
	ChallengeResult string
}

const defaultSystemPrompt = "You are an Elasticsearch certification tutor. " +
	"Answer using the supplied reference material when it is relevant, and say so when it is not."

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		LLM: LLMConfig{
			APIURL:       getEnv("LLM_API_URL", "https://ai.gitee.com/v1/chat/completions"),
			APIKey:       getEnv("LLM_API_KEY", ""),
			Model:        getEnv("LLM_MODEL", "Qwen2.5-72B-Instruct"),
			TimeoutMs:    getEnvAsInt("LLM_TIMEOUT_MS", 120000),
			SystemPrompt: getEnv("LLM_SYSTEM_PROMPT", defaultSystemPrompt),
		},
		Topics: TopicConfig{
			ChallengeResult: getEnv("CHALLENGE_RESULT_TOPIC_NAME", "CHALLENGE_RESULT"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
