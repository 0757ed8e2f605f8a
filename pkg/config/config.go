package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Anthropic  AnthropicConfig
	Processing ProcessingConfig
	Output     OutputConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type AnthropicConfig struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

type ProcessingConfig struct {
	Concurrency int
	Workers     int
}

type OutputConfig struct {
	Directory string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 120),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./mailscope.db"),
		},
		Anthropic: AnthropicConfig{
			APIKey:         getEnv("ANTHROPIC_API_KEY", ""),
			Model:          getEnv("ANTHROPIC_MODEL", ""),
			TimeoutSeconds: getEnvAsInt("EXTRACTION_TIMEOUT", 60),
		},
		Processing: ProcessingConfig{
			Concurrency: getEnvAsInt("EXTRACTION_CONCURRENCY", 4),
			Workers:     getEnvAsInt("EXTRACTION_WORKERS", 1),
		},
		Output: OutputConfig{
			Directory: getEnv("OUTPUT_DIR", "./output"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
