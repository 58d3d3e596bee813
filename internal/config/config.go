package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// AI runtimes
	AIProvider    string  `mapstructure:"ai_provider" yaml:"ai_provider"`
	OpenAIAPIKey  string  `mapstructure:"openai_api_key" yaml:"openai_api_key"`
	OpenAIBaseURL string  `mapstructure:"openai_base_url" yaml:"openai_base_url"`
	OpenAIModel   string  `mapstructure:"openai_model" yaml:"openai_model"`
	GeminiAPIKey  string  `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel   string  `mapstructure:"gemini_model" yaml:"gemini_model"`
	MaxTokens     int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature" yaml:"temperature"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Storage and server
	DataDir       string `mapstructure:"data_dir" yaml:"data_dir"`
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	Currency      string `mapstructure:"currency" yaml:"currency"`
}

// DefaultPath returns ~/.ciaohost/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ciaohost", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ciaohost/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Vendor keys also honor the
// unprefixed OPENAI_API_KEY / GEMINI_API_KEY variables.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CIAOHOST")
	v.AutomaticEnv()

	v.SetDefault("ai_provider", "openai")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("max_tokens", 800)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("data_dir", "data")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("session_ttl_min", 120)
	v.SetDefault("currency", "EUR")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".ciaohost"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	return &c, nil
}
