package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8081"`
	RelayPort string `env:"RELAY_PORT" envDefault:"3001"`
	DebugMode bool   `env:"DEBUG_MODE" envDefault:"false"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Evolution *EvolutionConfig
	Store     *StoreConfig
	Relay     *RelayConfig
	S3Config  *S3Config
}

type EvolutionConfig struct {
	BaseURL          string `env:"EVOLUTION_API_URL"`
	APIKey           string `env:"EVOLUTION_API_KEY"`
	WebhookPublicURL string `env:"WEBHOOK_PUBLIC_URL"`
	// WebhookSecret é exigido nos eventos recebidos em /webhook/evolution; vazio usa a APIKey.
	WebhookSecret string `env:"EVOLUTION_WEBHOOK_SECRET"`
}

// Configured informa se a URL e a chave da Evolution API foram definidas.
func (c *EvolutionConfig) Configured() bool {
	return c != nil && strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.APIKey) != ""
}

type StoreConfig struct {
	DSN            string `env:"STORE_DSN"`
	ServiceRoleKey string `env:"SERVICE_ROLE_KEY"`
	MaxOpenConns   int    `env:"STORE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int    `env:"STORE_MAX_IDLE_CONNS" envDefault:"5"`
	AutoMigrate    bool   `env:"STORE_AUTO_MIGRATE" envDefault:"false"`
}

type RelayConfig struct {
	SessionName string `env:"DEFAULT_SESSION_NAME" envDefault:"support-session"`
	DataDir     string `env:"RELAY_DATA_DIR" envDefault:"data"`
}

type S3Config struct {
	AccessKey  string `env:"S3_ACCESS_KEY"`
	SecretKey  string `env:"S3_SECRET_KEY"`
	BucketName string `env:"S3_BUCKET"`
	Region     string `env:"S3_REGION" envDefault:"us-east-1"`
	ServiceUrl string `env:"S3_ENDPOINT" envDefault:"https://s3.amazonaws.com"`
	BucketUrl  string `env:"S3_BUCKET_URL"`
}

func (c *S3Config) Configured() bool {
	return c != nil && c.AccessKey != "" && c.SecretKey != "" && c.BucketName != ""
}

// NewConfig carrega o .env (se existir) e as variáveis de ambiente.
func NewConfig() (*Config, error) {
	_ = godotenv.Load(".env")
	return Parse()
}

// Parse lê somente as variáveis de ambiente do processo.
func Parse() (*Config, error) {
	cfg := &Config{
		Evolution: &EvolutionConfig{},
		Store:     &StoreConfig{},
		Relay:     &RelayConfig{},
		S3Config:  &S3Config{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Evolution.BaseURL = strings.TrimRight(cfg.Evolution.BaseURL, "/")
	if cfg.Evolution.WebhookSecret == "" {
		cfg.Evolution.WebhookSecret = cfg.Evolution.APIKey
	}
	if cfg.S3Config.BucketUrl == "" && cfg.S3Config.BucketName != "" {
		cfg.S3Config.BucketUrl = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.S3Config.BucketName)
	}
	return cfg, nil
}
