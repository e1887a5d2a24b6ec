package auth

import (
	"errors"

	"github.com/zalando/go-keyring"

	"github.com/tsugi-app/tsugi/internal/config"
)

const (
	keyringService = "tsugi"
	keyringUser    = "anilist-token"
)

// StoreToken persists the AniList OAuth token to the system keyring.
func StoreToken(token string) error {
	return keyring.Set(keyringService, keyringUser, token)
}

// DeleteToken removes the AniList OAuth token from the system keyring.
func DeleteToken() error {
	err := keyring.Delete(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ResolveToken returns the AniList token to use.  An explicit token in the
// config (which includes env var overrides) wins over the keyring, so that
// scripted environments without a keyring service keep working.
func ResolveToken(cfg *config.Config) string {
	if cfg.Auth.Token != "" {
		return cfg.Auth.Token
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		return ""
	}
	return token
}
