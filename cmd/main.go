package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wallboard/wallboard-server/internal/api/http/handler"
	"github.com/wallboard/wallboard-server/internal/api/http/middleware"
	"github.com/wallboard/wallboard-server/internal/api/http/router"
	"github.com/wallboard/wallboard-server/internal/cache"
	"github.com/wallboard/wallboard-server/internal/config"
	"github.com/wallboard/wallboard-server/internal/kv"
	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
	"github.com/wallboard/wallboard-server/internal/repository/kvstore"
	"github.com/wallboard/wallboard-server/internal/repository/postgres"
	"github.com/wallboard/wallboard-server/internal/security"
	"github.com/wallboard/wallboard-server/internal/server"
	"github.com/wallboard/wallboard-server/internal/service"
	storage "github.com/wallboard/wallboard-server/internal/storage/minio"
	"github.com/wallboard/wallboard-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	store, backend := kv.Select(ctx, cfg.Redis, logger)
	logger.Info("key-value backend selected", "backend", string(backend))

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := kvstore.NewUserRepository(store)
	messageRepo := postgres.NewMessageRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := security.NewBcrypt(cfg.Auth.BcryptCost)

	tokenService := service.NewTokenService(tokenManager, store, userRepo, logger)
	authService := service.NewAuth(userRepo, hasher, tokenService, logger)
	queryCache := cache.NewQueryCache(store, logger)
	historyService := service.NewHistory(messageRepo, queryCache, cfg.Cache.HistoryTTL, logger)

	var storageClient model.ObjectStorage
	if cfg.Storage.Bucket == "" {
		logger.Warn("no storage bucket configured, presigned uploads disabled")
	} else {
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to create minio client", "error", err)
		}
		storageClient, err = storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
		if err != nil {
			logger.Fatal("failed to initialize storage client", "error", err)
		}
	}

	authLimiter, apiLimiter := router.NewLimiters(store, cfg.Auth.RateLimitAuth, cfg.Auth.RateLimitAPI, logger)

	mux := router.New(router.Deps{
		Auth:         handler.NewAuth(authService, logger),
		History:      handler.NewHistory(historyService, logger),
		Files:        handler.NewFiles(storageClient, logger),
		Health:       handler.NewHealth(backend),
		Authenticate: middleware.NewAuthenticate(tokenManager, logger),
		AuthLimiter:  authLimiter,
		APILimiter:   apiLimiter,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		Logger:       logger,
	})

	httpServer := server.NewHTTPServer(mux, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
