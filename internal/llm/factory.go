package llm

import (
	"fmt"
	"strings"

	"gpt-commenter/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates completion clients with consistent logic. A missing
// credential is a construction error; the caller decides whether that
// degrades the service or aborts startup.
type Factory struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		if f.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai api key is not configured")
		}
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL), nil
	case ProviderYandex:
		if f.YandexOAuthToken == "" {
			return nil, fmt.Errorf("yandex oauth token is not configured")
		}
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
