package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("FINBOT_TEST_TWILIO_TOKEN", "secret-token")

	doc := `{
		"app": {"public_url": "https://bot.example.com"},
		"render": {"chrome_path": "/usr/bin/chromium"},
		"gateways": {
			"whatsapp": {"enabled": true, "account_sid": "AC123", "token": "${FINBOT_TEST_TWILIO_TOKEN}", "from": "whatsapp:+14155238886"},
			"telegram": {"enabled": false, "token": "tg"}
		},
		"providers": {
			"kimi": {"kind": "openai", "api_key": "k", "model": "moonshotai/kimi-k2", "base_url": "https://openrouter.ai/api/v1", "enabled": true},
			"gemini_studio": {"kind": "googleai", "api_key": "g", "model": "gemini-1.5-flash", "enabled": true},
			"llama": {"kind": "openai", "enabled": false}
		}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	wa, ok := cfg.GetGateway("whatsapp")
	require.True(t, ok)
	assert.Equal(t, "secret-token", wa.Token)
	assert.Equal(t, "AC123", wa.AccountSID)

	_, ok = cfg.GetGateway("telegram")
	assert.False(t, ok)

	assert.Equal(t, []string{"gemini_studio", "kimi"}, cfg.EnabledProviders())
	assert.Equal(t, DefaultCommands, cfg.Commands)
	assert.Equal(t, ":3000", cfg.App.ListenAddr)
	assert.Equal(t, 25, cfg.Policy.MaxSteps)
	assert.Equal(t, 800, cfg.Render.Width)
	assert.Equal(t, "/usr/bin/chromium", cfg.Render.ChromePath)
	assert.Equal(t, 60, cfg.Media.TTLMinutes)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
