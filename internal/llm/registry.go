package llm

import (
	"fmt"

	"clinex/internal/config"
	"clinex/internal/domain"
	"clinex/internal/port"
)

// Factory creates a ModelClient from a provider config.
type Factory func(cfg *config.ProviderConfig) (port.ModelClient, error)

// registry of model client factories, populated by init() in each vendor
// package or explicitly via Register.
var providers = map[string]Factory{}

// Register registers a model client factory by vendor name.
func Register(name string, factory Factory) {
	providers[name] = factory
}

// New creates a ModelClient for the configured vendor using the registered
// factory, wrapped with the provider's retry policy.
func New(cfg *config.ProviderConfig) (port.ModelClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, cfg.Provider)
	}
	client, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	return WithRetry(cfg.Provider, client, cfg.MaxRetries), nil
}
