package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aathifpm/Feedback-system-sub000/internal/attendance"
	"github.com/aathifpm/Feedback-system-sub000/internal/auth"
	"github.com/aathifpm/Feedback-system-sub000/internal/config"
	"github.com/aathifpm/Feedback-system-sub000/internal/handler"
	"github.com/aathifpm/Feedback-system-sub000/internal/httpmiddleware"
	"github.com/aathifpm/Feedback-system-sub000/internal/logging"
	"github.com/aathifpm/Feedback-system-sub000/internal/metrics"
	"github.com/aathifpm/Feedback-system-sub000/internal/observability"
	"github.com/aathifpm/Feedback-system-sub000/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer lg.Closer()

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flushSentry()

	if err := runHTTP(cfg, lg.Base); err != nil {
		lg.Sugar.Fatalw("http server failed", "err", err)
	}
}

func runHTTP(cfg config.App, lg *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db.Client); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	repo := attendance.NewRepository(db.Client)
	svc := attendance.NewService(repo, lg)
	h := handler.New(svc, db, redisClient, cfg, lg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.GinMiddleware(
		httpmiddleware.NewRedisLimiter(redisClient.Client, cfg.RateLimitPerMin)))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", h.Healthz)

	if cfg.DevTokenMint {
		r.POST("/v1/auth/token", h.MintToken)
		lg.Info("dev token mint endpoint enabled")
	}

	authGroup := r.Group("/v1", auth.StaffAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	authGroup.GET("/schedule/today", h.ScheduleToday)
	authGroup.GET("/events/:variant/:id/roster", h.Roster)
	authGroup.GET("/events/:variant/:id/summary", h.Summary)
	authGroup.GET("/events/:variant/:id/export", h.ExportRegister)
	authGroup.POST("/events/:variant/:id/marks", h.MarkOne)
	authGroup.POST("/events/:variant/:id/marks/bulk", h.BulkSetDefault)
	authGroup.POST("/events/:variant/:id/marks/fill", h.FillMissing)
	authGroup.PATCH("/events/:variant/:id/marks", h.UpdateMany)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("server forced shutdown", zap.Error(err))
	}

	lg.Info("server exited")
	return nil
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
