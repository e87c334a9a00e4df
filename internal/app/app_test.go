package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avstrong/afrotour/internal/auth"
	"github.com/avstrong/afrotour/internal/config"
)

func TestIdentityProvider(t *testing.T) {
	assert.IsType(t, &auth.MockProvider{}, identityProvider(&config.Config{}))
	assert.IsType(t, &auth.MockProvider{}, identityProvider(&config.Config{AuthProviderURL: "https://example.supabase.co"}))
	assert.IsType(t, &auth.RemoteProvider{}, identityProvider(&config.Config{
		AuthProviderURL: "https://example.supabase.co",
		AuthProviderKey: "anon",
	}))
}
