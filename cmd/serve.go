package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/api"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	srvAddr        string
	srvSeed        int64
	srvMaxSessions int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		addr := srvAddr
		if addr == "" && cfg != nil {
			addr = cfg.ListenAddr
		}
		if addr == "" {
			addr = ":8080"
		}
		ttl := session.DefaultTTL
		if cfg != nil && cfg.SessionTTLMin > 0 {
			ttl = time.Duration(cfg.SessionTTLMin) * time.Minute
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		assistant := newAssistant()
		if assistant == nil {
			fmt.Fprintln(os.Stderr, "⚠ Warning: no AI provider configured; recommendations and content are simulated")
		}
		srv := api.New(api.Options{
			Store:     st,
			Sessions:  session.NewStore(ttl, srvMaxSessions),
			Assistant: assistant,
			Currency:  currency(),
			Seed:      srvSeed,
		})
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Printf("✓ Serving CiaoHost API on %s (data: %s)\n", addr, st.Dir)
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().Int64Var(&srvSeed, "seed", 0, "seed for generated calendars (0: time-based)")
	serveCmd.Flags().Int64Var(&srvMaxSessions, "max-sessions", 1000, "maximum live sessions kept in memory")
}
