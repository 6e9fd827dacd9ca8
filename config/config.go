package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Vision    VisionConfig
	OpenFDA   OpenFDAConfig
	Watsonx   WatsonxConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionConfig holds Google Cloud Vision API configuration
type VisionConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenFDAConfig holds openFDA drug label API configuration.
// The API key is optional; openFDA serves unauthenticated requests at a
// lower rate limit.
type OpenFDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// WatsonxConfig holds IBM watsonx.ai text-generation configuration
type WatsonxConfig struct {
	APIKey     string `mapstructure:"api_key"`
	ProjectID  string `mapstructure:"project_id"`
	ServiceURL string `mapstructure:"service_url"`
	IAMURL     string `mapstructure:"iam_url"`
	ModelID    string `mapstructure:"model_id"`
	Version    string `mapstructure:"version"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL            time.Duration `mapstructure:"ttl"`
	ExplanationTTL time.Duration `mapstructure:"explanation_ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP   int `mapstructure:"per_ip"`
	Vision  int `mapstructure:"vision"`
	OpenFDA int `mapstructure:"openfda"`
	Watsonx int `mapstructure:"watsonx"`
}

// StoreConfig holds settings-persistence configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/medilingo/")

	// Environment variable settings
	v.SetEnvPrefix("MEDILINGO")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:4321"})

	// Vision defaults
	v.SetDefault("vision.base_url", "https://vision.googleapis.com")

	// openFDA defaults
	v.SetDefault("openfda.base_url", "https://api.fda.gov")

	// Watsonx defaults
	v.SetDefault("watsonx.service_url", "https://us-south.ml.cloud.ibm.com")
	v.SetDefault("watsonx.iam_url", "https://iam.cloud.ibm.com")
	v.SetDefault("watsonx.model_id", "meta-llama/llama-3-405b-instruct")
	v.SetDefault("watsonx.version", "2024-05-31")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.explanation_ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.vision", 600)
	v.SetDefault("ratelimit.openfda", 240)
	v.SetDefault("ratelimit.watsonx", 60)

	// Store defaults
	v.SetDefault("store.path", "medilingo.sqlite")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Vision.APIKey == "" {
		return fmt.Errorf("Vision API key is required (set MEDILINGO_VISION_API_KEY)")
	}

	if config.Watsonx.APIKey == "" {
		return fmt.Errorf("watsonx API key is required (set MEDILINGO_WATSONX_API_KEY)")
	}

	if config.Watsonx.ProjectID == "" {
		return fmt.Errorf("watsonx project ID is required (set MEDILINGO_WATSONX_PROJECT_ID)")
	}

	if config.Store.Path == "" {
		return fmt.Errorf("settings store path must not be empty")
	}

	return nil
}
