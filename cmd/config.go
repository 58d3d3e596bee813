package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/ai"
	cfgpkg "github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CiaoHost configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("ai_provider: %s\n", cfg.AIProvider)
		fmt.Printf("openai_api_key: %s\n", mask(cfg.OpenAIAPIKey))
		fmt.Printf("openai_base_url: %s\n", cfg.OpenAIBaseURL)
		fmt.Printf("openai_model: %s\n", cfg.OpenAIModel)
		fmt.Printf("gemini_api_key: %s\n", mask(cfg.GeminiAPIKey))
		fmt.Printf("gemini_model: %s\n", cfg.GeminiModel)
		fmt.Printf("max_tokens: %d\n", cfg.MaxTokens)
		fmt.Printf("temperature: %.3f\n", cfg.Temperature)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Printf("data_dir: %s\n", cfg.DataDir)
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		fmt.Printf("session_ttl_min: %d\n", cfg.SessionTTLMin)
		fmt.Printf("currency: %s\n", cfg.Currency)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		intVal := func(dst *int) error {
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			*dst = i
			return nil
		}
		switch key {
		case "ai_provider":
			p, err := ai.NormalizeProvider(val)
			if err != nil {
				return err
			}
			cfg.AIProvider = p
		case "openai_api_key":
			cfg.OpenAIAPIKey = val
		case "openai_base_url":
			cfg.OpenAIBaseURL = strings.TrimRight(val, "/")
		case "openai_model":
			cfg.OpenAIModel = val
		case "gemini_api_key":
			cfg.GeminiAPIKey = val
		case "gemini_model":
			cfg.GeminiModel = val
		case "max_tokens":
			if err := intVal(&cfg.MaxTokens); err != nil {
				return err
			}
		case "temperature":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 2 {
				return fmt.Errorf("invalid float for temperature: %v (0..2)", val)
			}
			cfg.Temperature = f
		case "http_timeout_sec":
			if err := intVal(&cfg.HTTPTimeoutSec); err != nil {
				return err
			}
		case "retry_max_attempts":
			if err := intVal(&cfg.RetryMaxAttempts); err != nil {
				return err
			}
		case "retry_base_delay_ms":
			if err := intVal(&cfg.RetryBaseDelayMs); err != nil {
				return err
			}
		case "retry_max_delay_ms":
			if err := intVal(&cfg.RetryMaxDelayMs); err != nil {
				return err
			}
		case "data_dir":
			cfg.DataDir = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "session_ttl_min":
			if err := intVal(&cfg.SessionTTLMin); err != nil {
				return err
			}
		case "currency":
			cfg.Currency = strings.ToUpper(strings.TrimSpace(val))
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
