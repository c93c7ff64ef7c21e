package llm

import (
	"fmt"
	"time"
)

// NewFromProvider creates an LLMClient for the configured provider.
func NewFromProvider(provider, baseURL, apiKey string, timeout time.Duration) (LLMClient, error) {
	switch provider {
	case "openai":
		return NewClient(baseURL, apiKey, timeout), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
