package llm

import (
	"fmt"
	"strings"
	"time"

	"mycobot/internal/config"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	APIKey             string
	BaseURL            string
	OpenRouterReferrer string
	OpenRouterTitle    string
	YandexOAuthToken   string
	YandexFolderID     string
	Timeout            time.Duration

	TranscribeAPIKey  string
	TranscribeBaseURL string
	TranscribeModel   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		APIKey:             cfg.LLMAPIKey,
		BaseURL:            cfg.LLMBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
		Timeout:            cfg.LLMTimeout,
		TranscribeAPIKey:   cfg.TranscriptionKey(),
		TranscribeBaseURL:  cfg.TranscriptionBaseURL(),
		TranscribeModel:    cfg.TranscribeModel,
	}
}

func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch config.LLMProvider(strings.ToLower(provider)) {
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIOptions{
			APIKey:   f.APIKey,
			BaseURL:  f.BaseURL,
			Model:    model,
			Referrer: f.OpenRouterReferrer,
			Title:    f.OpenRouterTitle,
			Timeout:  f.Timeout,
		}), nil
	case config.ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}

// TranscriptionOptions returns the OpenAI-compatible settings for the
// speech-to-text endpoint.
func (f *Factory) TranscriptionOptions() OpenAIOptions {
	return OpenAIOptions{
		APIKey:  f.TranscribeAPIKey,
		BaseURL: f.TranscribeBaseURL,
		Model:   f.TranscribeModel,
		Timeout: f.Timeout,
	}
}
