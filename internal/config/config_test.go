package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:5000", cfg.Server.Addr)
	require.Equal(t, "data/codefusion.db", cfg.Database.Path)
	require.Equal(t, 60, cfg.Auth.TokenTTLMinutes)
	require.True(t, cfg.UsingDefaultSecret(), "unset secret must fall back to the embedded default")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CODEFUSION_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("CODEFUSION_AUTH_JWTSECRET", "configured-secret")
	t.Setenv("CODEFUSION_AUTH_TOKENTTLMINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, "configured-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 15, cfg.Auth.TokenTTLMinutes)
	require.False(t, cfg.UsingDefaultSecret())
}
