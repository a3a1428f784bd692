package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	SMTP       SMTPConfig
	Completion CompletionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	// Interval the session list poller refreshes on while a session is
	// connected.
	SessionPollInterval time.Duration
}

type DatabaseConfig struct {
	Connection      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type CompletionConfig struct {
	// Provider is "azure" or "ollama".
	Provider       string
	Endpoint       string
	APIKey         string
	DeploymentName string
	APIVersion     string
	OllamaBaseURL  string
	OllamaModel    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			SessionPollInterval: getEnvAsDuration("SESSION_POLL_INTERVAL", 10*time.Second),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenExpiry: getEnvAsDuration("JWT_TOKEN_EXPIRY", 24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "WebChat"),
		},
		Completion: CompletionConfig{
			Provider:       getEnv("COMPLETION_PROVIDER", "azure"),
			Endpoint:       getEnv("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:         getEnv("AZURE_OPENAI_API_KEY", ""),
			DeploymentName: getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
			APIVersion:     getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:    getEnv("OLLAMA_MODEL", "llama3"),
		},
	}
}

// Validate reports every missing required value so startup can be blocked
// instead of failing deep inside a request path.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.Connection == "" {
		missing = append(missing, "DB_CONNECTION_STRING")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Completion.Provider == "azure" {
		if c.Completion.Endpoint == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
		if c.Completion.APIKey == "" {
			missing = append(missing, "AZURE_OPENAI_API_KEY")
		}
		if c.Completion.DeploymentName == "" {
			missing = append(missing, "AZURE_OPENAI_DEPLOYMENT_NAME")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
