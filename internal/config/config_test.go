package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(`{
		"default_channel": "anthropic",
		"channels": {
			"anthropic": {"channel":"anthropic","api_key":"sk-file","model":"claude-3-opus-20240229"}
		}
	}`), 0o600))

	cfg, err := Init(dir, false)
	require.NoError(t, err)
	require.Equal(t, "anthropic", cfg.DefaultChannel)

	ch, err := cfg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "sk-file", ch.APIKey)
	require.Equal(t, "anthropic", ch.Channel)
}

func TestInitEnvOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "https://gateway.example.com/v1")
	t.Setenv("DESKCHAT_CHANNEL", "openai")

	cfg, err := Init(t.TempDir(), true)
	require.NoError(t, err)
	require.True(t, cfg.Debug)

	ch, err := cfg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "sk-env", ch.APIKey)
	require.Equal(t, "https://gateway.example.com/v1", ch.BaseURL)
	require.Equal(t, "gpt-4o-mini", ch.Model)
}

func TestResolveUnknownChannel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("DESKCHAT_CHANNEL", "")

	cfg, err := Init(t.TempDir(), false)
	require.NoError(t, err)

	_, err = cfg.Resolve("")
	require.ErrorIs(t, err, ErrNoChannel)

	_, err = cfg.Resolve("gemini")
	require.ErrorContains(t, err, "未配置的渠道")
}
