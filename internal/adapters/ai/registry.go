package ai

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

type Config struct {
	// Default is the provider used when a request names none.
	Default   string
	Timeout   time.Duration
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Gemini    ProviderConfig
}

type Registry struct {
	providers   map[string]domain.InsightProvider
	defaultName string
}

func NewRegistry(defaultName string) *Registry {
	return &Registry{
		providers:   make(map[string]domain.InsightProvider),
		defaultName: strings.ToLower(defaultName),
	}
}

// NewRegistryFromConfig registers every provider that has an API key. When no default
// is configured the first registered provider in openai, anthropic, gemini order wins.
func NewRegistryFromConfig(cfg Config) *Registry {
	client := newHTTPClient(cfg.Timeout)
	r := NewRegistry(cfg.Default)

	if cfg.OpenAI.APIKey != "" {
		r.Register(NewOpenAIProvider(cfg.OpenAI, client))
	}
	if cfg.Anthropic.APIKey != "" {
		r.Register(NewAnthropicProvider(cfg.Anthropic, client))
	}
	if cfg.Gemini.APIKey != "" {
		r.Register(NewGeminiProvider(cfg.Gemini, client))
	}
	return r
}

func (r *Registry) Register(p domain.InsightProvider) {
	name := strings.ToLower(p.Name())
	r.providers[name] = p
	if r.defaultName == "" {
		r.defaultName = name
	}
}

func (r *Registry) Lookup(name string) (domain.InsightProvider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.defaultName
	}

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrAIProviderNotFound, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
