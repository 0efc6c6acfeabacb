package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// LLM settings
	LLMProvider      string  `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string  `env:"OPENAI_BASE_URL"`
	Model            string  `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	Temperature      float32 `env:"TEMPERATURE" envDefault:"1.0"`
	MaxTokens        int     `env:"MAX_TOKENS" envDefault:"150"`
	YandexOAuthToken string  `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string  `env:"YANDEX_FOLDER_ID"`

	// Conversation
	MaxHistory int `env:"MAX_HISTORY" envDefault:"5"`

	// Rate limiting
	RequestsPerWindow      int `env:"REQUESTS_PER_WINDOW" envDefault:"10"`
	RateLimitWindowSeconds int `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`

	// Timeouts
	ConnectionTimeoutSeconds int `env:"CONNECTION_TIMEOUT_SECONDS" envDefault:"10"`

	// Features
	PlayerJoinEnabled        bool `env:"FEATURE_PLAYER_JOIN" envDefault:"true"`
	PlayerDeathEnabled       bool `env:"FEATURE_PLAYER_DEATH" envDefault:"true"`
	PlayerChatEnabled        bool `env:"FEATURE_PLAYER_CHAT" envDefault:"true"`
	PlayerAdvancementEnabled bool `env:"FEATURE_PLAYER_ADVANCEMENT" envDefault:"true"`

	// Dispatch
	Workers int `env:"WORKERS" envDefault:"4"`

	// Transcript storage
	TranscriptBackend  string `env:"TRANSCRIPT_BACKEND" envDefault:"file"`
	TranscriptFilePath string `env:"TRANSCRIPT_FILE_PATH" envDefault:"logs/transcript.jsonl"`
	TranscriptDBPath   string `env:"TRANSCRIPT_DB_PATH" envDefault:"data/transcript.db"`

	// Overrides persistence
	ModelFilePath string `env:"MODEL_FILE_PATH" envDefault:"data/model.txt"`

	// Metrics
	MetricsFlushMinutes int `env:"METRICS_FLUSH_MINUTES" envDefault:"30"`
}

func (c *Config) WindowDuration() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c *Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.ConnectionTimeoutSeconds) * time.Second
}

func (c *Config) validate() error {
	if c.MaxHistory <= 0 {
		return fmt.Errorf("MAX_HISTORY must be positive, got %d", c.MaxHistory)
	}
	if c.RequestsPerWindow <= 0 {
		return fmt.Errorf("REQUESTS_PER_WINDOW must be positive, got %d", c.RequestsPerWindow)
	}
	if c.RateLimitWindowSeconds <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive, got %d", c.RateLimitWindowSeconds)
	}
	if c.ConnectionTimeoutSeconds <= 0 {
		return fmt.Errorf("CONNECTION_TIMEOUT_SECONDS must be positive, got %d", c.ConnectionTimeoutSeconds)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	switch c.TranscriptBackend {
	case "file", "sqlite", "none":
	default:
		return fmt.Errorf("unknown TRANSCRIPT_BACKEND: %s", c.TranscriptBackend)
	}
	return nil
}

// Manager holds the active configuration snapshot and swaps it whole on
// reload. A failed reload leaves the previous snapshot in effect.
type Manager struct {
	mu  sync.RWMutex
	cur *Config
}

// Load parses the environment into the initial snapshot.
func Load() (*Manager, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	return &Manager{cur: cfg}, nil
}

// NewManager wraps an already-built config, for callers that assemble
// one directly.
func NewManager(cfg *Config) *Manager {
	return &Manager{cur: cfg}
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// The model override file, when present, wins over the environment so
	// operators can swap models without restarting the environment.
	if s := readTrim(cfg.ModelFilePath); s != "" {
		cfg.Model = s
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Current returns the active snapshot. Callers must not mutate it.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Reload re-parses the environment and override files. On error the
// active snapshot is unchanged.
func (m *Manager) Reload() error {
	cfg, err := parse()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cur = cfg
	m.mu.Unlock()
	return nil
}

func readTrim(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
