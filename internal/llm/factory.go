package llm

import (
	"fmt"

	"assistbot/internal/config"
)

// Factory creates completion clients with consistent logic
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

func (f *Factory) CreateClient() (Client, error) {
	switch f.cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAI(
			f.cfg.OpenAIAPIKey,
			f.cfg.OpenAIBaseURL,
			f.cfg.OpenAIModel,
			f.cfg.OpenAIVisionModel,
			f.cfg.RequestTimeout,
		), nil
	case config.ProviderYandex:
		return NewYandex(f.cfg.YandexOAuthToken, f.cfg.YandexFolderID, f.cfg.RequestTimeout)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", f.cfg.LLMProvider)
	}
}
