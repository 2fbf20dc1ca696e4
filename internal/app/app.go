// Package app wires the components shared by the HTTP server into one explicitly passed context.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adscout/backend/config"
	"github.com/adscout/backend/internal/download"
	"github.com/adscout/backend/internal/graph"
	"github.com/adscout/backend/internal/logs"
	"github.com/adscout/backend/internal/metrics"
	"github.com/adscout/backend/internal/middleware"
	"github.com/adscout/backend/internal/search"
	"github.com/adscout/backend/internal/token"
	"github.com/adscout/backend/internal/web"
	"github.com/adscout/backend/pkg/queue"
	"github.com/adscout/backend/pkg/response"
)

// App holds the process-wide state. It is created once at startup.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Logs         *logs.Buffer
	Registry     *prometheus.Registry
	Metrics      *metrics.Metrics
	Tokens       *token.Store
	Guard        *token.Guard
	Graph        *graph.Client
	Search       *search.Gateway
	Orchestrator *download.Orchestrator

	history *download.Repository
}

// New builds the application components from cfg. buf receives captured logs and reg collects metrics.
func New(cfg *config.Config, logger *zap.Logger, buf *logs.Buffer, reg *prometheus.Registry) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := metrics.New(reg)
	client := graph.NewClient(cfg.Facebook.GraphURL, cfg.Facebook.APIVersion, time.Duration(cfg.Facebook.TimeoutSec)*time.Second, logger)
	tokens := token.NewStore(cfg.Facebook.AccessToken)

	gw := search.NewGateway(client, tokens, cfg.Facebook.DefaultCountry, cfg.Facebook.DefaultLanguage, logger)
	gw.SetMetrics(m)

	fetcher := download.NewFetcher(time.Duration(cfg.Download.TimeoutSec) * time.Second)
	orch := download.NewOrchestrator(cfg.Download.Dir, cfg.Download.MaxConcurrent, fetcher, logger)
	orch.SetMetrics(m)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Logs:         buf,
		Registry:     reg,
		Metrics:      m,
		Tokens:       tokens,
		Guard:        token.NewGuard(client, logger),
		Graph:        client,
		Search:       gw,
		Orchestrator: orch,
	}
}

// SetHistory enables batch history backed by repo.
func (a *App) SetHistory(repo *download.Repository) {
	a.history = repo
	a.Orchestrator.SetHistory(repo)
}

// SetMirror enables S3 mirroring of finished batches through q.
func (a *App) SetMirror(q *queue.Queue) {
	a.Orchestrator.SetMirror(q)
}

// CheckDefaultToken verifies the configured default token once and logs the outcome.
func (a *App) CheckDefaultToken(ctx context.Context) bool {
	return a.Guard.CheckDefault(ctx, a.Tokens)
}

// Router builds the gin engine with every route.
func (a *App) Router() *gin.Engine {
	searchHandler := search.NewHandler(a.Search, a.Logger)
	downloadHandler := download.NewHandler(a.Orchestrator, a.Logger)
	if a.history != nil {
		downloadHandler.SetHistory(a.history)
	}
	tokenHandler := token.NewHandler(a.Tokens, a.Guard, a.Logger)
	logsHandler := logs.NewHandler(a.Logs, a.Logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(a.Config.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(a.Logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	web.NewHandler().Register(router)

	api := router.Group("/api")
	{
		api.GET("/search", searchHandler.Search)
		api.POST("/download", downloadHandler.Download)
		api.GET("/batches", downloadHandler.ListBatches)
		api.POST("/set-token", tokenHandler.SetToken)
		api.GET("/token/status", tokenHandler.Status)
		api.GET("/logs", logsHandler.List)
		api.GET("/logs/stream", logsHandler.Stream)
	}

	router.NoRoute(func(c *gin.Context) { response.Error(c, http.StatusNotFound, "not found") })
	return router
}
