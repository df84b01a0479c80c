package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/api/websocket"
	"github.com/fortuna/augur/internal/backfill"
	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/service"
	"github.com/fortuna/augur/internal/store"
)

// Deps bundles everything the REST layer serves. Hub and Backfill may
// be nil; their routes are simply not mounted.
type Deps struct {
	DvP         *service.DvPService
	DepthCharts *service.DepthChartService
	Slates      *service.SlateService
	Players     *service.PlayerService
	AFL         *service.AFLService
	Bets        *service.BetService
	Backfill    *backfill.Service
	Hub         *websocket.Hub

	DB         *store.Database
	Cache      *cache.RedisCache
	CronSecret string
	Log        *zap.SugaredLogger
}

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, deps Deps) *Server {
	handler := &Handler{
		dvpService:    deps.DvP,
		chartService:  deps.DepthCharts,
		slateService:  deps.Slates,
		playerService: deps.Players,
		aflService:    deps.AFL,
		betService:    deps.Bets,
		db:            deps.DB,
		cache:         deps.Cache,
		cronSecret:    deps.CronSecret,
		log:           deps.Log,
	}

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(deps.Log))
	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(deps.Log))
	router.Use(MetricsMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// WebSocket upgrade
	if deps.Hub != nil {
		router.Handle("/ws", websocket.NewHandler(deps.Hub, deps.Log))
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Defense vs position
	api.HandleFunc("/dvp/league", handler.GetLeagueDvP).Methods("GET")
	api.HandleFunc("/dvp", handler.GetDvP).Methods("GET")

	// Depth charts
	api.HandleFunc("/depth-charts", handler.GetDepthCharts).Methods("GET")

	// Slates
	api.HandleFunc("/games/today", handler.GetTodaysGames).Methods("GET")
	api.HandleFunc("/games", handler.GetGamesByDate).Methods("GET")

	// Players
	api.HandleFunc("/players/search", handler.SearchPlayers).Methods("GET")
	api.HandleFunc("/players/averages", handler.GetPlayerAverages).Methods("GET")

	// AFL
	api.HandleFunc("/afl/fixtures", handler.GetAFLFixtures).Methods("GET")
	api.HandleFunc("/afl/ladder", handler.GetAFLLadder).Methods("GET")

	// Bets; resolve before the id route so "resolve" never matches {betID}
	api.HandleFunc("/bets/resolve", handler.ResolveBets).Methods("GET")
	api.HandleFunc("/bets", handler.ListBets).Methods("GET")
	api.HandleFunc("/bets/{betID}", handler.GetBet).Methods("GET")

	// Backfill admin
	if deps.Backfill != nil {
		backfillHandler := NewBackfillHandler(deps.Backfill)
		api.HandleFunc("/admin/backfill", backfillHandler.GetBackfillStatus).Methods("GET")
		api.HandleFunc("/admin/backfill", backfillHandler.EnqueueBackfill).Methods("POST")
		api.HandleFunc("/admin/backfill/{jobID}", backfillHandler.GetBackfillJob).Methods("GET")
		api.HandleFunc("/admin/backfill/{jobID}", backfillHandler.CancelBackfillJob).Methods("DELETE")
	}

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
