package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("MEDILINGO_SERVER_PORT")
		os.Unsetenv("MEDILINGO_SERVER_ENVIRONMENT")
		os.Unsetenv("MEDILINGO_SERVER_ALLOWED_ORIGINS")
		os.Unsetenv("MEDILINGO_VISION_API_KEY")
		os.Unsetenv("MEDILINGO_VISION_BASE_URL")
		os.Unsetenv("MEDILINGO_OPENFDA_API_KEY")
		os.Unsetenv("MEDILINGO_OPENFDA_BASE_URL")
		os.Unsetenv("MEDILINGO_WATSONX_API_KEY")
		os.Unsetenv("MEDILINGO_WATSONX_PROJECT_ID")
		os.Unsetenv("MEDILINGO_WATSONX_SERVICE_URL")
		os.Unsetenv("MEDILINGO_WATSONX_MODEL_ID")
		os.Unsetenv("MEDILINGO_CACHE_TTL")
		os.Unsetenv("MEDILINGO_RATELIMIT_PER_IP")
		os.Unsetenv("MEDILINGO_STORE_PATH")
	}

	setRequired := func() {
		os.Setenv("MEDILINGO_VISION_API_KEY", "test-vision-key")
		os.Setenv("MEDILINGO_WATSONX_API_KEY", "test-watsonx-key")
		os.Setenv("MEDILINGO_WATSONX_PROJECT_ID", "test-project")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		setRequired()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Vision.BaseURL != "https://vision.googleapis.com" {
			t.Errorf("Vision.BaseURL = %s, want https://vision.googleapis.com", cfg.Vision.BaseURL)
		}
		if cfg.OpenFDA.BaseURL != "https://api.fda.gov" {
			t.Errorf("OpenFDA.BaseURL = %s, want https://api.fda.gov", cfg.OpenFDA.BaseURL)
		}
		if cfg.Watsonx.ServiceURL != "https://us-south.ml.cloud.ibm.com" {
			t.Errorf("Watsonx.ServiceURL = %s, want https://us-south.ml.cloud.ibm.com", cfg.Watsonx.ServiceURL)
		}
		if cfg.Watsonx.ModelID != "meta-llama/llama-3-405b-instruct" {
			t.Errorf("Watsonx.ModelID = %s, want meta-llama/llama-3-405b-instruct", cfg.Watsonx.ModelID)
		}
		if cfg.Watsonx.Version != "2024-05-31" {
			t.Errorf("Watsonx.Version = %s, want 2024-05-31", cfg.Watsonx.Version)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Cache.ExplanationTTL != time.Hour {
			t.Errorf("Cache.ExplanationTTL = %v, want 1h", cfg.Cache.ExplanationTTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Store.Path != "medilingo.sqlite" {
			t.Errorf("Store.Path = %s, want medilingo.sqlite", cfg.Store.Path)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		setRequired()
		os.Setenv("MEDILINGO_SERVER_PORT", "9090")
		os.Setenv("MEDILINGO_SERVER_ENVIRONMENT", "production")
		os.Setenv("MEDILINGO_VISION_BASE_URL", "https://custom.vision.example.com")
		os.Setenv("MEDILINGO_OPENFDA_BASE_URL", "https://custom.fda.example.com")
		os.Setenv("MEDILINGO_CACHE_TTL", "48h")
		os.Setenv("MEDILINGO_RATELIMIT_PER_IP", "200")
		os.Setenv("MEDILINGO_STORE_PATH", "/var/lib/medilingo/settings.sqlite")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Vision.BaseURL != "https://custom.vision.example.com" {
			t.Errorf("Vision.BaseURL = %s, want https://custom.vision.example.com", cfg.Vision.BaseURL)
		}
		if cfg.OpenFDA.BaseURL != "https://custom.fda.example.com" {
			t.Errorf("OpenFDA.BaseURL = %s, want https://custom.fda.example.com", cfg.OpenFDA.BaseURL)
		}
		if cfg.Cache.TTL != 48*time.Hour {
			t.Errorf("Cache.TTL = %v, want 48h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Store.Path != "/var/lib/medilingo/settings.sqlite" {
			t.Errorf("Store.Path = %s, want /var/lib/medilingo/settings.sqlite", cfg.Store.Path)
		}
	})

	t.Run("fails validation when vision API key is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEDILINGO_WATSONX_API_KEY", "test-watsonx-key")
		os.Setenv("MEDILINGO_WATSONX_PROJECT_ID", "test-project")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing vision API key")
		}
	})

	t.Run("fails validation when watsonx API key is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEDILINGO_VISION_API_KEY", "test-vision-key")
		os.Setenv("MEDILINGO_WATSONX_PROJECT_ID", "test-project")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing watsonx API key")
		}
	})

	t.Run("fails validation when watsonx project ID is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MEDILINGO_VISION_API_KEY", "test-vision-key")
		os.Setenv("MEDILINGO_WATSONX_API_KEY", "test-watsonx-key")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing watsonx project ID")
		}
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		if err := LoadEnv(); err != nil {
			t.Errorf("LoadEnv() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")

		if err := LoadEnv(); err != nil {
			t.Fatalf("LoadEnv() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		os.Setenv("TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := LoadEnv(); err != nil {
			t.Fatalf("LoadEnv() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}

		os.Unsetenv("TEST_OVERRIDE")
	})
}

func TestValidate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			Vision: VisionConfig{
				APIKey:  "test-key",
				BaseURL: "https://vision.googleapis.com",
			},
			Watsonx: WatsonxConfig{
				APIKey:    "test-key",
				ProjectID: "test-project",
			},
			Store: StoreConfig{
				Path: "medilingo.sqlite",
			},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when vision API key is empty", func(t *testing.T) {
		cfg := validConfig()
		cfg.Vision.APIKey = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty vision API key")
		}
	})

	t.Run("fails when watsonx API key is empty", func(t *testing.T) {
		cfg := validConfig()
		cfg.Watsonx.APIKey = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty watsonx API key")
		}
	})

	t.Run("fails when store path is empty", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.Path = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty store path")
		}
	})
}
