package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	GRPC    GRPCConfig
	Webhook WebhookConfig
	GitHub  GitHubConfig
	Logging LoggingConfig
}

type GRPCConfig struct {
	Port int // 0 disables the health server
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	CORSOrigins     []string
}

type WebhookConfig struct {
	Path   string
	Secret string
	DryRun bool
}

type GitHubConfig struct {
	AppID      int64
	PrivateKey string
	Token      string
	APIURL     string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	PreparePrivateKey()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 3000),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 20),
			CORSOrigins:     getEnvList("CORS_ALLOW_ORIGINS"),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Webhook: WebhookConfig{
			Path:   getEnv("WEBHOOK_PATH", "/api/github/webhooks"),
			Secret: os.Getenv("WEBHOOK_SECRET"),
			DryRun: getEnvBool("DRY_RUN", false),
		},
		GitHub: LoadGitHub(),
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if !strings.HasPrefix(c.Webhook.Path, "/") {
		return fmt.Errorf("webhook path must start with '/': %s", c.Webhook.Path)
	}
	if c.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required")
	}

	if !c.GitHub.HasAppCredentials() && c.GitHub.Token == "" {
		return fmt.Errorf("either APP_ID and PRIVATE_KEY or GITHUB_TOKEN must be set")
	}

	return nil
}

// LoadGitHub reads only the GitHub credential settings, for tools that do not
// receive webhooks.
func LoadGitHub() GitHubConfig {
	PreparePrivateKey()
	return GitHubConfig{
		AppID:      int64(getEnvInt("APP_ID", 0)),
		PrivateKey: os.Getenv("PRIVATE_KEY"),
		Token:      os.Getenv("GITHUB_TOKEN"),
		APIURL:     os.Getenv("GITHUB_API_URL"),
	}
}

// HasAppCredentials reports whether GitHub App authentication is configured.
func (g GitHubConfig) HasAppCredentials() bool {
	return g.AppID > 0 && g.PrivateKey != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
