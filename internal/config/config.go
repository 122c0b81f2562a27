package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

// LogPolicy decides which dispatch outcomes reach the chat log.
type LogPolicy string

const (
	// LogSuccess persists only answers that came from the remote model.
	LogSuccess LogPolicy = "success"
	// LogAll also persists offline fallback answers and failure strings.
	LogAll LogPolicy = "all"
)

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider   `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey        string        `env:"LLM_API_KEY"`
	LLMBaseURL       string        `env:"LLM_BASE_URL" envDefault:"https://api.together.xyz/v1"`
	LLMModel         string        `env:"LLM_MODEL" envDefault:"mistralai/Mistral-7B-Instruct-v0.1"`
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Speech to text. Empty key/base URL fall back to the LLM settings.
	TranscribeAPIKey  string `env:"TRANSCRIBE_API_KEY"`
	TranscribeBaseURL string `env:"TRANSCRIBE_BASE_URL"`
	TranscribeModel   string `env:"TRANSCRIBE_MODEL" envDefault:"whisper-1"`

	// Storage
	FAQFilePath    string    `env:"FAQ_FILE_PATH" envDefault:"offline_faq.json"`
	ChatLogPath    string    `env:"CHAT_LOG_PATH" envDefault:"chat_history.csv"`
	ChatLogPolicy  LogPolicy `env:"CHAT_LOG_POLICY" envDefault:"success"`
	FarmLogPath    string    `env:"FARM_LOG_PATH" envDefault:"farm_log.csv"`
	EnvLogPath     string    `env:"ENV_LOG_PATH" envDefault:"env_log.csv"`
	JournalLogPath string    `env:"JOURNAL_LOG_PATH" envDefault:"journal_log.csv"`
	PhotoDir       string    `env:"PHOTO_DIR" envDefault:"."`

	// Telegram front end
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	DigestCron       string `env:"DIGEST_CRON" envDefault:"0 21 * * *"`
	DigestChatID     int64  `env:"DIGEST_CHAT_ID"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// New parses the environment into a Config.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch LLMProvider(strings.ToLower(string(c.LLMProvider))) {
	case ProviderOpenAI, ProviderYandex:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}
	switch c.ChatLogPolicy {
	case LogSuccess, LogAll:
	default:
		return fmt.Errorf("unknown chat log policy: %s", c.ChatLogPolicy)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %s", c.LLMTimeout)
	}
	return nil
}

func (c *Config) TranscriptionKey() string {
	if c.TranscribeAPIKey != "" {
		return c.TranscribeAPIKey
	}
	return c.LLMAPIKey
}

func (c *Config) TranscriptionBaseURL() string {
	if c.TranscribeBaseURL != "" {
		return c.TranscribeBaseURL
	}
	return c.LLMBaseURL
}
