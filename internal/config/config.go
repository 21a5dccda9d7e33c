package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	AppName   string
	Version   string
	Port      string
	Env       string
	Debug     bool
	APIPrefix string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type LLMConfig struct {
	Provider     string
	Model        string
	OllamaURL    string
	GeminiAPIKey string
	Temperature  float64
	TopP         float64
	Timeout      time.Duration
}

type StorageConfig struct {
	UploadPath       string
	TempUploadPath   string
	MaxFileSizeMB    int64
	AllowedFileTypes []string
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	QueueSize    int
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			AppName:   getEnv("APP_NAME", "CV Evaluation Engine"),
			Version:   getEnv("APP_VERSION", "0.1.0"),
			Port:      getEnv("PORT", "8000"),
			Env:       getEnv("ENV", "development"),
			Debug:     getEnvAsBool("DEBUG", false),
			APIPrefix: getEnv("API_PREFIX", "/api/v1"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cv_engine"),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
			Model:        getEnv("LLM_MODEL", "llama3.2:1b"),
			OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			Temperature:  getEnvAsFloat("LLM_TEMPERATURE", 0.1),
			TopP:         getEnvAsFloat("LLM_TOP_P", 0.9),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", "120s"),
		},
		Storage: StorageConfig{
			UploadPath:       getEnv("UPLOAD_PATH", "data/uploads"),
			TempUploadPath:   getEnv("TEMP_UPLOAD_PATH", "temp_uploads"),
			MaxFileSizeMB:    getEnvAsInt64("MAX_FILE_SIZE_MB", 10),
			AllowedFileTypes: getEnvAsList("ALLOWED_FILE_TYPES", "pdf,txt,docx"),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
			QueueSize:    getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		RateLimit: RateLimitConfig{
			Max:    getEnvAsInt("RATE_LIMIT_MAX", 50),
			Window: getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// MaxFileSizeBytes is the upload limit in bytes.
func (s StorageConfig) MaxFileSizeBytes() int64 {
	return s.MaxFileSizeMB * 1024 * 1024
}

// CORSOrigins allows every origin only in debug mode.
func (s ServerConfig) CORSOrigins() string {
	if s.Debug {
		return "*"
	}
	return getEnv("CORS_ORIGINS", "http://localhost:3000")
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, strings.TrimPrefix(item, "."))
		}
	}
	return out
}
