package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/ai"
	cfgpkg "github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/config"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	flagDataDir string
	debug       bool
	// HTTP/retry flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "ciaohost",
	Short: "CiaoHost: property, pricing and booking toolkit for short-term rentals",
	Long: `CiaoHost manages rental properties, bookings and pricing seasons, generates
price calendars and AI-assisted recommendations, and analyzes or charts tabular
data. Run "ciaohost serve" to expose the same features over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ciaohost/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the JSON stores (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
}

func loadConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to read .env: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
}

// openStore opens the JSON stores under the configured data directory.
func openStore() (*store.Store, error) {
	dir := flagDataDir
	if dir == "" && cfg != nil {
		dir = cfg.DataDir
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, err
	}
	if debug {
		fmt.Fprintf(os.Stderr, "debug: data dir %s\n", st.Dir)
	}
	return st, nil
}

// newAssistant returns the configured AI assistant, or nil when none is set
// up. Misconfiguration is reported as a warning and treated as "no AI".
func newAssistant() *ai.Assistant {
	a, err := ai.NewAssistant(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: AI disabled: %v\n", err)
		return nil
	}
	if a == nil && debug {
		fmt.Fprintln(os.Stderr, "debug: no AI provider configured, using simulated output")
	}
	return a
}

func currency() string {
	if cfg != nil && cfg.Currency != "" {
		return cfg.Currency
	}
	return "EUR"
}
