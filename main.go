package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"generalstuff/account"
	"generalstuff/auth"
	"generalstuff/blog"
	"generalstuff/common"
	"generalstuff/config"
	"generalstuff/database"
	"generalstuff/logger"
	"generalstuff/media"
	"generalstuff/middleware"
	"generalstuff/site"
	"generalstuff/store"
	"generalstuff/views"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := common.ConnectDb(cfg.SqliteDB, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations(db, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		zlog.Fatal("invalid trusted proxies", zap.Strings("trusted_proxies", cfg.TrustedProxies), zap.Error(err))
	}
	router.Use(logger.Recovery(zlog), logger.Requests(zlog))
	router.Use(middleware.BodyLimit(cfg.MaxUploadBytes()))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("generalstuff-session", sessionStore))

	st := store.New(db)
	router.Use(auth.Load(st))

	if err := views.Install(router); err != nil {
		zlog.Fatal("failed to parse templates", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		zlog.Fatal("failed to create media root", zap.String("media_root", cfg.MediaRoot), zap.Error(err))
	}
	router.Static("/media", cfg.MediaRoot)
	storage := media.NewStorage(cfg.MediaRoot, cfg.MaxUploadBytes())

	siteModule := site.NewSiteModule(st, zlog, cfg.BaseURL)
	siteModule.RegisterRoutes(router)

	blogModule := blog.NewBlogModule(st, storage, zlog)
	blogModule.RegisterRoutes(router)

	accountModule := account.NewAccountModule(st, storage, zlog, middleware.NewLimiter(cfg.AuthRatePerMinute))
	accountModule.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("server stopped")
}
