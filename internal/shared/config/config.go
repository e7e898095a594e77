package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Environment string
	Server      ServerConfig
	GitHub      GitHubConfig
	Registries  []RegistryCredential
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GitHubConfig holds the GitHub App identity used to mint installation tokens
// and verify inbound webhook signatures.
type GitHubConfig struct {
	WebhookSecret string
	AppID         int64
	PrivateKey    []byte
}

// RegistryCredential is one entry in the registry-credentials allowlist
// consulted before an image pull (spec §4.4). Empty by default.
type RegistryCredential struct {
	Hostname string
	Username string
	Password string
}

// Load loads configuration from environment variables and an optional
// config.yaml overlay.
func Load() (*Config, error) {
	viper.SetDefault("environment", "development")
	viper.SetDefault("server.port", 42069)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")

	viper.AutomaticEnv()
	viper.BindEnv("github.webhook_secret", "GITHUB_WEBHOOK_SECRET")
	viper.BindEnv("github.app_id", "GITHUB_APP_ID")
	viper.BindEnv("github.private_key", "GITHUB_PRIVATE_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	_ = viper.ReadInConfig() // optional overlay, absence is not an error

	readTimeout, _ := time.ParseDuration(viper.GetString("server.read_timeout"))
	writeTimeout, _ := time.ParseDuration(viper.GetString("server.write_timeout"))

	webhookSecret := viper.GetString("github.webhook_secret")
	if webhookSecret == "" {
		return nil, fmt.Errorf("config: GITHUB_WEBHOOK_SECRET is required")
	}

	appID := viper.GetInt64("github.app_id")
	if appID == 0 {
		return nil, fmt.Errorf("config: GITHUB_APP_ID is required")
	}

	privateKey := viper.GetString("github.private_key")
	if privateKey == "" {
		return nil, fmt.Errorf("config: GITHUB_PRIVATE_KEY is required")
	}

	var registries []RegistryCredential
	if err := viper.UnmarshalKey("registries", &registries); err != nil {
		return nil, fmt.Errorf("config: parsing registries: %w", err)
	}

	cfg := &Config{
		Environment: viper.GetString("environment"),
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		GitHub: GitHubConfig{
			WebhookSecret: webhookSecret,
			AppID:         appID,
			PrivateKey:    []byte(privateKey),
		},
		Registries: registries,
	}

	return cfg, nil
}
