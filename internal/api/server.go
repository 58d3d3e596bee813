package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/ai"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/content"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/pricing"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/session"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/karlseguin/ccache/v3"
)

// SessionHeader carries the session id in requests and responses.
const SessionHeader = "X-Session-ID"

const (
	chartCacheTTL  = 10 * time.Minute
	maxUploadBytes = 32 << 20
)

// Options wires the server's dependencies.
type Options struct {
	Store     *store.Store
	Sessions  *session.Store
	Assistant *ai.Assistant
	Currency  string
	// Seed makes generated calendars reproducible; 0 means time-based.
	Seed int64
}

// Server exposes the stores, pricing, content, datasets and dashboards over
// a JSON API under /api.
type Server struct {
	store       *store.Store
	sessions    *session.Store
	recommender *pricing.Recommender
	content     *content.Generator
	charts      *ccache.Cache[[]byte]
	currency    string
	seed        int64
}

// New builds a server.
func New(opts Options) *Server {
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.DefaultTTL, 1000)
	}
	return &Server{
		store:       opts.Store,
		sessions:    sessions,
		recommender: pricing.NewRecommender(opts.Assistant, opts.Currency),
		content:     content.NewGenerator(opts.Assistant),
		charts:      ccache.New(ccache.Configure[[]byte]().MaxSize(256)),
		currency:    opts.Currency,
		seed:        opts.Seed,
	}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.Use(s.withSession())
	{
		api.GET("/properties", s.listProperties)
		api.POST("/properties", s.createProperty)
		api.GET("/properties/:id", s.getProperty)
		api.PUT("/properties/:id", s.updateProperty)
		api.DELETE("/properties/:id", s.deleteProperty)

		api.POST("/properties/:id/pricing/generate", s.generatePricing)
		api.GET("/properties/:id/pricing", s.getPricing)
		api.GET("/properties/:id/pricing/recommend", s.recommendPrice)
		api.GET("/properties/:id/market", s.marketComparison)

		api.GET("/bookings", s.listBookings)
		api.POST("/bookings", s.createBooking)
		api.POST("/bookings/:id/cancel", s.cancelBooking)

		api.GET("/seasons", s.listSeasons)
		api.POST("/seasons", s.addSeason)
		api.DELETE("/seasons/:id", s.removeSeason)
		api.POST("/seasons/defaults", s.defaultSeasons)
		api.GET("/seasons/lookup", s.lookupSeason)

		api.POST("/datasets", s.uploadDataset)
		api.GET("/datasets", s.listDatasets)
		api.GET("/datasets/:name/column-types", s.columnTypes)
		api.GET("/datasets/:name/describe", s.describeDataset)
		api.POST("/datasets/:name/filter", s.filterDataset)
		api.POST("/datasets/:name/clusters", s.clusterDataset)
		api.GET("/datasets/:name/anomalies", s.datasetAnomalies)

		api.GET("/charts/types", s.chartTypes)
		api.POST("/charts", s.renderChart)

		api.GET("/content/kinds", s.contentKinds)
		api.POST("/content", s.generateContent)

		api.GET("/session", s.getSession)
		api.DELETE("/session", s.endSession)
		api.GET("/dashboard", s.currentDashboard)
		api.POST("/dashboard/panels", s.addPanel)
		api.DELETE("/dashboard/panels/:id", s.removePanel)
		api.GET("/dashboard/render", s.renderDashboard)
		api.GET("/dashboard/panels/:id/image", s.panelImage)
		api.GET("/dashboards", s.listDashboards)
		api.POST("/dashboards", s.saveDashboard)
		api.POST("/dashboards/:name/load", s.loadDashboard)
		api.DELETE("/dashboards/:name", s.deleteDashboard)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("CiaoHost API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Printf("shutting down API server")
	err := srv.Shutdown(shutdownCtx)
	s.charts.Stop()
	s.sessions.Stop()
	return err
}
