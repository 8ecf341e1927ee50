package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinex/internal/config"
	"clinex/internal/domain"
	"clinex/internal/port"
)

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(&config.ProviderConfig{Provider: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestNew_WrapsWithRetry(t *testing.T) {
	Register("fake", func(_ *config.ProviderConfig) (port.ModelClient, error) {
		return &scriptedClient{}, nil
	})

	c, err := New(&config.ProviderConfig{Provider: "fake", MaxRetries: 2})
	require.NoError(t, err)
	_, ok := c.(*RetryClient)
	assert.True(t, ok)
}
