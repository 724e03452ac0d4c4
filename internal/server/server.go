// Package server exposes the market store over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"MarketExplorer/internal/collector"
	"MarketExplorer/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// CoinDirectory looks up and registers provider coins.
type CoinDirectory interface {
	ListCoins(ctx context.Context) ([]collector.Coin, error)
	ValidateCoinID(ctx context.Context, coinID string) (bool, error)
	Register(instrument, coinID string) error
}

// Options configures the HTTP surface.
type Options struct {
	Instruments  []string
	Coins        CoinDirectory
	Version      string
	Debug        bool
	AllowOrigins []string
	Now          func() time.Time
}

// Server serves the store's state and snapshots.
type Server struct {
	store  *store.Store
	opts   Options
	engine *gin.Engine

	instMu      sync.RWMutex
	instruments []string

	upgrader *websocket.Upgrader

	// WebSocket clients, owned by the hub goroutine
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	states     <-chan store.State
	cancelSub  func()
	done       chan struct{}
}

// New builds the router and starts the WebSocket hub. The hub stops when ctx is done.
func New(ctx context.Context, st *store.Store, opts Options) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	states, cancel := st.Subscribe(64)
	s := &Server{
		store:       st,
		opts:        opts,
		engine:      gin.New(),
		instruments: append([]string(nil), opts.Instruments...),
		upgrader:    newUpgrader(opts.AllowOrigins),
		clients:     make(map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		states:      states,
		cancelSub:   cancel,
		done:        make(chan struct{}),
	}

	s.engine.Use(Recovery(), RequestID(), Logging("/api/health"), CORS(opts.AllowOrigins))
	s.setupRoutes()

	go s.runHub(ctx)
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.getHealth)
		api.GET("/instruments", s.getInstruments)
		api.POST("/instruments", s.postInstruments)
		api.GET("/state", s.getState)

		api.GET("/daily", s.getDaily)
		api.GET("/buckets/:granularity", s.getBuckets)
		api.GET("/indicators", s.getIndicators)
		api.GET("/signals", s.getSignals)
		api.GET("/filter", s.getFiltered)
		api.GET("/export/:kind", s.getExport)
		api.GET("/report", s.getReport)
		api.GET("/report/monthly", s.getMonthlyReport)

		api.POST("/instrument", s.postInstrument)
		api.POST("/live", s.postLive)
		api.POST("/refresh", s.postRefresh)
		api.POST("/regenerate", s.postRegenerate)
		api.DELETE("/cache", s.deleteCache)
	}

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
