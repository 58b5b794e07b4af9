package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Search SearchConfig
	App    AppConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type LLMConfig struct {
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

type SearchConfig struct {
	MaxResults int
	Timeout    time.Duration
}

type AppConfig struct {
	MaxUploadSize int64
	LogLevel      string
}

// Load reads configuration from the environment. Everything has a default so
// the service starts with no environment at all; the API key is deliberately
// absent here because it is supplied per request by the caller.
func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LLM_MODEL", "gpt-4o-mini")
	viper.SetDefault("LLM_BASE_URL", "")
	viper.SetDefault("LLM_TEMPERATURE", 0.7)
	viper.SetDefault("LLM_MAX_TOKENS", 2048)
	viper.SetDefault("SEARCH_MAX_RESULTS", 3)
	viper.SetDefault("SEARCH_TIMEOUT", "15s")
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	viper.SetDefault("APP_LOG_LEVEL", "info")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		LLM: LLMConfig{
			Model:       viper.GetString("LLM_MODEL"),
			BaseURL:     viper.GetString("LLM_BASE_URL"),
			Temperature: viper.GetFloat64("LLM_TEMPERATURE"),
			MaxTokens:   viper.GetInt("LLM_MAX_TOKENS"),
		},
		Search: SearchConfig{
			MaxResults: viper.GetInt("SEARCH_MAX_RESULTS"),
			Timeout:    viper.GetDuration("SEARCH_TIMEOUT"),
		},
		App: AppConfig{
			MaxUploadSize: viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			LogLevel:      viper.GetString("APP_LOG_LEVEL"),
		},
	}

	return cfg, nil
}
