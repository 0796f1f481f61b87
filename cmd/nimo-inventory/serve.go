package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/nimo-inventory/internal/config"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/handler"
	"github.com/bitfantasy/nimo-inventory/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	port    int
	migrate bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the inventory HTTP API" }
func (*serveCmd) Usage() string {
	return `nimo-inventory serve [-port n] [-migrate]

  Starts the HTTP API and blocks until SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "listen port (overrides server.port)")
	f.BoolVar(&c.migrate, "migrate", true, "auto-migrate SQL tables before serving")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()
	zapLogger := a.logger
	cfg := a.cfg
	if c.port > 0 {
		cfg.Server.Port = c.port
	}

	zapLogger.Info("Starting nimo-inventory service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("driver", cfg.Database.Driver),
	)

	if c.migrate {
		if err := a.migrate(); err != nil {
			zapLogger.Error("Failed to migrate database", zap.Error(err))
			return subcommands.ExitFailure
		}
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger, "/health/live", "/health/ready", "/api/v1/inventory/events"))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/inventory/events"})))

	handlers := handler.NewHandlers(a.services, a.hub, nil)
	registerRoutes(router, handlers, a, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE 长连接
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return subcommands.ExitFailure
	}

	zapLogger.Info("Server exited")
	return subcommands.ExitSuccess
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, a *app, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		if a.db != nil {
			sqlDB, err := a.db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
	})

	v1 := r.Group("/api/v1")
	if cfg.JWT.Secret != "" {
		v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	}
	handler.RegisterRoutes(v1, h)
}
