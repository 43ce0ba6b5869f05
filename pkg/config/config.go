package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Completion CompletionConfig
	Seed       SeedConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig selects the storage engine. Driver is "sqlite" (embedded,
// default) or "postgres".
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CompletionConfig holds the remote completion endpoint and its credential.
// AuthURL overrides the GigaChat OAuth endpoint. URL, AuthURL and APIKey
// must never reach a log line; use the zap object marshaler.
type CompletionConfig struct {
	Provider           string
	URL                string
	AuthURL            string
	APIKey             string
	Model              string
	Scope              string
	InsecureSkipVerify bool
}

// MarshalLogObject logs the completion settings with endpoints and the
// credential redacted.
func (c CompletionConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("provider", c.Provider)
	enc.AddBool("url_set", c.URL != "")
	enc.AddString("model", c.Model)
	enc.AddBool("api_key_set", c.APIKey != "")
	return nil
}

type SeedConfig struct {
	File string
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for containers.
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true"
	provider := strings.ToLower(getEnv("COMPLETION_PROVIDER", "openai"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:     getEnv("DB_PATH", "knowledge_base.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "edubot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Completion: CompletionConfig{
			Provider:           provider,
			URL:                getEnv("COMPLETION_URL", ""),
			AuthURL:            getEnv("GIGACHAT_AUTH_URL", ""),
			APIKey:             getEnv("COMPLETION_API_KEY", ""),
			Model:              getEnv("COMPLETION_MODEL", defaultModel(provider)),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Seed: SeedConfig{
			File: getEnv("SEED_FILE", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func defaultModel(provider string) string {
	if provider == "gigachat" {
		return "GigaChat"
	}
	return "deepseek-chat"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
