package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tsugi-app/tsugi/internal/config"
)

func TestDeleteTokenWhenNoneStored(t *testing.T) {
	keyring.MockInit()

	// A missing entry is not an error; logout should be idempotent
	assert.NoError(t, DeleteToken())
}

func TestStoreAndDeleteTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, StoreToken("secret-token"))

	cfg := &config.Config{}
	assert.Equal(t, "secret-token", ResolveToken(cfg))

	require.NoError(t, DeleteToken())
	assert.Empty(t, ResolveToken(cfg))
}

func TestResolveTokenPrefersConfig(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, StoreToken("keyring-token"))

	cfg := &config.Config{}
	cfg.Auth.Token = "config-token"
	assert.Equal(t, "config-token", ResolveToken(cfg))
}
