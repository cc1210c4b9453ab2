package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/internal/analytics"
	"github.com/sentimenthq/pulse/internal/cache"
	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/events"
	"github.com/sentimenthq/pulse/internal/queue"
	"github.com/sentimenthq/pulse/internal/worker"
	"github.com/sentimenthq/pulse/pkg/config"
	"github.com/sentimenthq/pulse/pkg/logging"
)

// Router sets up API routes
type Router struct {
	cfg    *config.Config
	db     *db.DB
	cache  *cache.Cache
	hub    *events.Hub
	issuer *TokenIssuer
	logger *zap.Logger

	auth      *AuthAPI
	sentiment *SentimentAPI
	trends    *TrendsAPI
	analytics *AnalyticsAPI
	ingestion *IngestionAPI
	posts     *PostsAPI
	users     *db.UserRepository
}

// NewRouter creates a new API router wiring every handler group
func NewRouter(cfg *config.Config, database *db.DB, redisCache *cache.Cache, hub *events.Hub, analyzer worker.Analyzer) *Router {
	repo := db.NewRepository(database)
	users := db.NewUserRepository(repo)
	issuer := NewTokenIssuer(&cfg.Auth)

	trendQuery := analytics.NewTrendQuery(database.DB)

	return &Router{
		cfg:       cfg,
		db:        database,
		cache:     redisCache,
		hub:       hub,
		issuer:    issuer,
		logger:    logging.GetLogger().With(zap.String("component", "api-router")),
		auth:      NewAuthAPI(users, issuer),
		sentiment: NewSentimentAPI(repo, trendQuery, analyzer, hub),
		trends:    NewTrendsAPI(trendQuery, redisCache),
		analytics: NewAnalyticsAPI(analytics.NewDashboardQuery(database.DB), analytics.NewReportQuery(database.DB)),
		ingestion: NewIngestionAPI(repo, queue.New(database.DB, cfg.Worker.MaxRetries)),
		posts:     NewPostsAPI(repo, analytics.NewPostQuery(database.DB), redisCache),
		users:     users,
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(CorrelationMiddleware())
	engine.Use(r.corsMiddleware())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	v1 := engine.Group("/api/v1")

	// Auth endpoints stay public
	auth := v1.Group("/auth")
	auth.POST("/login", r.auth.Login)
	auth.POST("/register", r.auth.Register)
	auth.POST("/refresh", r.auth.Refresh)
	auth.GET("/profile", AuthMiddleware(r.issuer), r.auth.Profile)

	// Event stream; browser websocket clients cannot set Authorization
	// headers, so the hub endpoint is open like the dashboard read APIs
	v1.GET("/ws", r.subscribeHandler)

	// Read APIs accept either an API key or a bearer token
	authed := v1.Group("")
	authed.Use(APIKeyMiddleware(r.users))

	sentiment := authed.Group("/sentiment")
	sentiment.POST("/analyze", r.sentiment.Analyze)
	sentiment.GET("/recent", r.sentiment.Recent)
	sentiment.GET("/trends", r.sentiment.Trends)

	trends := authed.Group("/trends")
	trends.GET("/realtime", r.trends.Realtime)
	trends.GET("/keyword/:keyword/history", r.trends.KeywordHistory)

	analyticsGroup := authed.Group("/analytics")
	analyticsGroup.GET("/dashboard", r.analytics.Dashboard)
	analyticsGroup.GET("/reports/sentiment-summary", r.analytics.SentimentSummaryReport)

	posts := authed.Group("/posts")
	posts.GET("", r.posts.List)
	posts.GET("/:id", r.posts.Get)
	posts.DELETE("/:id", AuthMiddleware(r.issuer), r.posts.Delete)

	// Ingestion control requires an operator token
	ingestion := authed.Group("/ingestion")
	ingestion.Use(AuthMiddleware(r.issuer))
	ingestion.POST("/:platform/trigger", r.ingestion.Trigger)
	ingestion.GET("/status", r.ingestion.Status)
}

// corsMiddleware builds the CORS policy from configuration; with no
// configured origins the dashboard-friendly default is to allow all
func (r *Router) corsMiddleware() gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key", "X-Correlation-ID"},
		ExposeHeaders:    []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(r.cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = r.cfg.Server.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	return cors.New(corsCfg)
}

// subscribeHandler upgrades GET /ws to a websocket on the event hub
func (r *Router) subscribeHandler(c *gin.Context) {
	if err := r.hub.Subscribe(c.Writer, c.Request); err != nil {
		r.logger.Warn("Websocket upgrade failed", zap.Error(err))
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "UNAVAILABLE",
			"service": "pulse-api",
		})
		return
	}
	payload := gin.H{
		"status":  "OK",
		"service": "pulse-api",
		"clients": r.hub.ClientCount(),
	}
	// Worker-published gauge; absent when redis is disabled
	if depth, err := r.cache.QueueDepth(c.Request.Context()); err == nil {
		payload["queueDepth"] = depth
	}
	c.JSON(http.StatusOK, payload)
}
