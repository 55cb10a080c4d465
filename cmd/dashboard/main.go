package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/config"
	"github.com/iamasit07/soundboard-dashboard/internal/live"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/repository/postgres"
	"github.com/iamasit07/soundboard-dashboard/internal/repository/redis"
	"github.com/iamasit07/soundboard-dashboard/internal/service/cleanup"
	"github.com/iamasit07/soundboard-dashboard/internal/session"
	transportHttp "github.com/iamasit07/soundboard-dashboard/internal/transport/http"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/websocket"
	"github.com/iamasit07/soundboard-dashboard/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			slog.Info("no .env file found")
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		slog.Error("invalid logging configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Login history is optional; without DATABASE_URL the dashboard runs
	// without it.
	var logins *postgres.LoginRepo
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:       cfg.DBMaxOpenConns,
			MaxIdleConns:       cfg.DBMaxIdleConns,
			ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
		})
		if err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := postgres.RunMigrations(ctx, db); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
		logins = postgres.NewLoginRepo(db)
		logger.Info("login history enabled")
	}

	var profileCache *session.ProfileCache
	if rdb := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, logger); rdb != nil {
		defer rdb.Close()
		profileCache = session.NewProfileCache(redis.NewRedisCache(rdb), cfg.ProfileCacheTTL, logger)
	}

	api := backend.NewClient(cfg.Backend, logger)
	sessions := &middleware.SessionFactory{
		Backend:    api,
		Cache:      profileCache,
		CacheTTL:   cfg.ProfileCacheTTL,
		Lookahead:  cfg.RefreshLookahead,
		Production: cfg.IsProduction(),
		Logger:     logger,
	}

	// Typed nils would defeat the nil checks in the handlers.
	var loginStore transportHttp.LoginStore
	var activity middleware.ActivityTracker
	if logins != nil {
		loginStore = logins
		activity = logins

		worker := cleanup.NewWorker(logins, cfg.LoginHistoryDays, logger)
		worker.Start(ctx)
	}

	connManager := websocket.NewConnectionManager()
	wsHandler := websocket.NewHandler(connManager, live.WebSocketDialer(cfg.Backend.WebSocketURL, nil), api, cfg.AllowedOrigins, logger)

	routes := transportHttp.Routes{
		OAuth:     transportHttp.NewOAuthHandler(api, sessions, auth.NewStateSigner(cfg.StateSecret), loginStore, cfg.FrontendURL, cfg.IsProduction(), logger),
		Auth:      transportHttp.NewAuthHandler(loginStore, cfg.IsProduction(), logger),
		Dashboard: transportHttp.NewDashboardHandler(api, logger),
		History:   transportHttp.NewHistoryHandler(loginStore, logger),
		Live:      wsHandler.HandleWebSocket,
		Sessions:  sessions,
		Activity:  activity,
		Logger:    logger,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": connManager.Count()})
	})
	routes.Register(router)
	serveStatic(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connManager.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited gracefully")
}

// serveStatic serves the built frontend from ./static with SPA fallback.
func serveStatic(router *gin.Engine) {
	if _, err := os.Stat("./static"); err != nil {
		return
	}

	router.Static("/assets", "./static/assets")
	router.GET("/", func(c *gin.Context) {
		c.File("./static/index.html")
	})

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		path := filepath.Join("static", filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/assets/") || strings.HasSuffix(c.Request.URL.Path, ".css") || strings.HasSuffix(c.Request.URL.Path, ".js") {
			c.Status(http.StatusNotFound)
			return
		}

		c.File("./static/index.html")
	})
}
