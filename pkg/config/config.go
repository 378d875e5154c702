package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Gateways  map[string]GatewayConfig  `json:"gateways"`
	Providers map[string]ProviderConfig `json:"providers"`
	Commands  map[string]string         `json:"commands"`
	Memory    MemoryConfig              `json:"memory"`
	Policy    PolicyConfig              `json:"policy"`
	Render    RenderConfig              `json:"render"`
	Media     MediaConfig               `json:"media"`
}

type AppConfig struct {
	Name       string `json:"name"`
	ListenAddr string `json:"listen_addr"`
	PublicURL  string `json:"public_url"`
	PromptsDir string `json:"prompts_dir"`
}

// GatewayConfig covers every messenger. Telegram and Discord only use
// Token; WhatsApp (Twilio) uses AccountSID, Token as the auth token, and
// From as the sender address ("whatsapp:+14155238886").
type GatewayConfig struct {
	Token           string `json:"token"`
	AccountSID      string `json:"account_sid,omitempty"`
	From            string `json:"from,omitempty"`
	ValidateSigning bool   `json:"validate_signing,omitempty"`
	Enabled         bool   `json:"enabled"`
}

type ProviderConfig struct {
	Kind    string `json:"kind"` // googleai, openai
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type PolicyConfig struct {
	MaxSteps       int      `json:"max_steps"`
	DeniedFormulas []string `json:"denied_formulas"`
	DeniedPatterns []string `json:"denied_patterns"`
}

type RenderConfig struct {
	Width          int  `json:"width"`
	Headful        bool `json:"headful"`
	TimeoutSeconds int  `json:"timeout_seconds"`

	// ChromePath overrides the Chrome binary chromedp would look up on PATH.
	ChromePath string `json:"chrome_path"`
}

type MediaConfig struct {
	TTLMinutes int `json:"ttl_minutes"`
}

// DefaultCommands maps the resolver commands to provider names.
var DefaultCommands = map[string]string{
	"resolver1": "gemini_studio",
	"resolver2": "kimi",
	"resolver3": "mistral",
	"resolver4": "llama",
	"resolver5": "deepseek",
}

// Load reads a JSON config file. Variables from a .env file next to the
// working directory are loaded first and ${VAR} references in the file are
// expanded from the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfig is Load for callers that cannot continue without a config.
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "finbot"
	}
	if c.App.ListenAddr == "" {
		c.App.ListenAddr = ":3000"
	}
	if c.App.PromptsDir == "" {
		c.App.PromptsDir = "./prompts"
	}
	if len(c.Commands) == 0 {
		c.Commands = make(map[string]string, len(DefaultCommands))
		for k, v := range DefaultCommands {
			c.Commands[k] = v
		}
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "finbot.db"
	}
	if c.Policy.MaxSteps == 0 {
		c.Policy.MaxSteps = 25
	}
	if c.Render.Width == 0 {
		c.Render.Width = 800
	}
	if c.Render.TimeoutSeconds == 0 {
		c.Render.TimeoutSeconds = 30
	}
	if c.Media.TTLMinutes == 0 {
		c.Media.TTLMinutes = 60
	}
}

// EnabledProviders returns the enabled providers sorted by name.
func (c *Config) EnabledProviders() []string {
	var names []string
	for name, p := range c.Providers {
		if p.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetGateway returns the named gateway config if it is enabled.
func (c *Config) GetGateway(name string) (GatewayConfig, bool) {
	g, ok := c.Gateways[name]
	if ok && g.Enabled {
		return g, true
	}
	return GatewayConfig{}, false
}
