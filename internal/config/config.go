package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Session     SessionConfig     `mapstructure:"session"`
	Assistant   AssistantConfig   `mapstructure:"assistant"`
	Recommender RecommenderConfig `mapstructure:"recommender"`
	Images      ImagesConfig      `mapstructure:"images"`
	Email       EmailConfig       `mapstructure:"email"`
}

// ServerConfig defines listen addresses and ports
type ServerConfig struct {
	APIPort     int    `mapstructure:"api_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	BindAddress string `mapstructure:"bind_address"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "bolt" or "redis"
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig defines session engine settings
type SessionConfig struct {
	IdlePauseTimeout string `mapstructure:"idle_pause_timeout"`
}

// AssistantConfig defines the project-scoped chat assistant settings
type AssistantConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// RecommenderConfig defines the resource recommendation settings
type RecommenderConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	MinResults int    `mapstructure:"min_results"`
	CacheTTL   string `mapstructure:"cache_ttl"`
}

// ImagesConfig defines the stock-photo search settings
type ImagesConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// EmailConfig defines the email notification delivery settings
type EmailConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceID  string `mapstructure:"service_id"`
	TemplateID string `mapstructure:"template_id"`
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
	Timeout    string `mapstructure:"timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("FOCUSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.api_port", 8712)
	v.SetDefault("server.metrics_port", 9190)
	v.SetDefault("server.bind_address", "127.0.0.1")

	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "focusd.db")
	v.SetDefault("storage.redis.host", "127.0.0.1")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("session.idle_pause_timeout", "5m")

	v.SetDefault("assistant.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("assistant.max_tokens", 1000)
	v.SetDefault("assistant.temperature", 0.7)

	v.SetDefault("recommender.base_url", "https://router.requesty.ai/v1")
	v.SetDefault("recommender.model", "google/gemini-2.5-pro")
	v.SetDefault("recommender.min_results", 10)
	v.SetDefault("recommender.cache_ttl", "24h")

	v.SetDefault("images.base_url", "https://api.pexels.com/v1")

	v.SetDefault("email.base_url", "https://api.emailjs.com")
	v.SetDefault("email.service_id", "default_service")
	v.SetDefault("email.timeout", "30s")
}

func validate(config *Config) error {
	switch config.Storage.Type {
	case "bolt":
		if config.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for bolt storage")
		}
	case "redis":
		if config.Storage.Redis.Host == "" {
			return fmt.Errorf("storage.redis.host is required for redis storage")
		}
	default:
		return fmt.Errorf("invalid storage.type: %s (must be bolt or redis)", config.Storage.Type)
	}

	if config.Server.APIPort <= 0 || config.Server.APIPort > 65535 {
		return fmt.Errorf("invalid server.api_port: %d", config.Server.APIPort)
	}
	if config.Server.MetricsPort <= 0 || config.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid server.metrics_port: %d", config.Server.MetricsPort)
	}

	switch config.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", config.Logging.Level)
	}

	return nil
}
