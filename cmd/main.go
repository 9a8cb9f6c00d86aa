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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpctx "github.com/dtroode/modulehub/internal/api/http/context"
	"github.com/dtroode/modulehub/internal/api/http/router"
	httpServer "github.com/dtroode/modulehub/internal/api/http/server"
	"github.com/dtroode/modulehub/internal/config"
	"github.com/dtroode/modulehub/internal/logger"
	"github.com/dtroode/modulehub/internal/model"
	"github.com/dtroode/modulehub/internal/password"
	"github.com/dtroode/modulehub/internal/repository"
	"github.com/dtroode/modulehub/internal/repository/postgres"
	"github.com/dtroode/modulehub/internal/server"
	"github.com/dtroode/modulehub/internal/service"
	storage "github.com/dtroode/modulehub/internal/storage/minio"
	"github.com/dtroode/modulehub/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

type stores struct {
	users       model.UserStore
	credentials model.CredentialStore
	modules     model.ModuleStore
	authOpts    []service.AuthOption
	pinger      model.Pinger
	close       func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer st.close()

	var contentStorage model.Storage
	if cfg.Storage.Endpoint != "" {
		storageClient, err := storage.New(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize storage client", "error", err)
		}
		contentStorage = storageClient
	} else {
		logger.Warn("MINIO_ENDPOINT is empty, module content endpoints are disabled")
	}

	hasher := password.NewBcrypt(cfg.Password.Cost, password.Policy{MinLength: cfg.Password.MinLength})
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	authService := service.NewAuth(st.users, st.credentials, hasher, tokenManager, logger, st.authOpts...)
	moduleService := service.NewModule(st.modules, contentStorage, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := router.New(
		authService,
		authService,
		moduleService,
		httpctx.NewManager(),
		registry,
		st.pinger,
		router.Limits{MaxBodyBytes: cfg.HTTP.MaxBodyBytes, MaxContentBytes: cfg.HTTP.MaxContentBytes},
		logger,
	)

	srv := httpServer.NewHTTPServer(r.Register(), cfg.HTTP.Address, httpServer.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

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
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// openStores connects to Postgres when a DSN is configured and falls back
// to in-memory stores otherwise.
func openStores(ctx context.Context, cfg config.Database, logger *logger.Logger) (*stores, error) {
	if cfg.DSN == "" {
		logger.Warn("DATABASE_DSN is empty, using in-memory storage")
		return &stores{
			users:       repository.NewUserRepository(repository.NewMemoryUserStore()),
			credentials: repository.NewCredentialRepository(repository.NewMemoryCredentialStore()),
			modules:     repository.NewMemoryModuleStore(),
			close:       func() {},
		}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.DSN, cfg.MaxConns)
	if err != nil {
		return nil, err
	}

	return &stores{
		users:       repository.NewUserRepository(postgres.NewUserTable(db)),
		credentials: repository.NewCredentialRepository(postgres.NewCredentialTable(db)),
		modules:     postgres.NewModuleTable(db),
		authOpts:    []service.AuthOption{service.WithTransactor(db)},
		pinger:      db,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		},
	}, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
