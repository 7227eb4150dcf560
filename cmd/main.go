package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dails-report/internal/clients"
	"dails-report/internal/config"
	"dails-report/internal/logger"
	"dails-report/internal/metrics"
	"dails-report/internal/protect"
	"dails-report/internal/render"
	"dails-report/internal/repository"
	"dails-report/internal/service"
	"dails-report/internal/transport/rest"
	"dails-report/internal/transport/websocket"
	"dails-report/pkg/database/postgres"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	lg := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = lg.Sync() }()
	zap.ReplaceGlobals(lg)

	db := mustInitPostgres(ctx, lg, cfg.Postgres)
	defer func() { _ = postgres.Close(db) }()

	redisClient := mustInitRedis(lg, cfg.Redis)
	defer redisClient.Close()

	m := metrics.New()

	// /files is served from local storage whatever the driver
	storageClient, err := clients.NewLocalStorage(cfg.Storage.ExportDir, cfg.Storage.FilesPublicPrefix, cfg.Storage.ExternalURL)
	if err != nil {
		lg.Fatal("storage init error", zap.Error(err))
	}
	files := mustInitFileStore(ctx, lg, cfg, storageClient)

	wsHub := websocket.NewHub(lg.Named("ws"))
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	declRepo := repository.NewDeclarationRepository(db)
	aggregator := service.NewAggregator(declRepo)

	protector := protect.New(protect.Options{
		Enabled:       cfg.Protection.Enabled,
		Policy:        policyFromConfig(cfg.Protection),
		OwnerPassword: cfg.Protection.OwnerPassword,
		TempDir:       cfg.Protection.TempDir,
	}, protect.NewPDFCPU(), lg.Named("protect"), m)

	reportSvc := service.NewReportService(aggregator, protector, render.Options{
		Organisation: cfg.Report.Organisation,
		Footer:       cfg.Report.Footer,
	}, lg.Named("report"), m)
	exportSvc := service.NewExportService(reportSvc, redisClient, files, wsClient, lg.Named("export"), m)

	handler := rest.NewHandler(reportSvc, exportSvc, wsHub, lg.Named("http"))
	handler.AddHealthCheck("postgres", db.PingContext)
	handler.AddHealthCheck("redis", redisClient.Ping)

	// public root router: files and metrics next to the API
	root := chi.NewRouter()
	root.Get(cfg.Storage.FilesPublicPrefix+"/{file}", storageClient.ServeFile)
	root.Handle("/metrics", promhttp.Handler())
	root.Mount("/", handler.InitRouter())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run HTTP server in goroutine so we can listen for shutdown signals
	srvErr := make(chan error, 1)
	go func() {
		lg.Info("HTTP server listening", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// start background cleaner that deletes files older than 30 minutes
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := storageClient.CleanupOlderThan(30 * time.Minute); err != nil {
					lg.Warn("storage cleanup error", zap.Error(err))
				}
			}
		}
	}()

	// Listen for OS shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			lg.Fatal("HTTP server error", zap.Error(err))
		}
	case sig := <-stop:
		lg.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("HTTP server shutdown error", zap.Error(err))
		}

		// let running exports record their final status before redis goes away
		exportSvc.Wait()

		// Cancel top-level context so background services (websocket hub) stop
		cancel()

		lg.Info("shutdown complete")
	}
}

func mustInitPostgres(ctx context.Context, lg *zap.Logger, cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Username:     cfg.User,
		DBName:       cfg.DBName,
		SSLMode:      cfg.SSLMode,
		Password:     cfg.Password,
		MaxOpenConns: 20,
		MaxIdleConns: 5,
	})
	if err != nil {
		lg.Fatal("postgres init error", zap.Error(err))
	}
	return db
}

func mustInitRedis(lg *zap.Logger, cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		lg.Fatal("redis init error", zap.Error(err))
	}
	return client
}

func mustInitFileStore(ctx context.Context, lg *zap.Logger, cfg config.AppConfig, local *clients.StorageClient) service.FileStore {
	if cfg.Storage.Driver != "s3" {
		return local
	}

	s3, err := clients.NewS3Client(ctx, clients.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
		Region:          cfg.S3.Region,
		Prefix:          cfg.S3.Prefix,
	})
	if err != nil {
		lg.Fatal("s3 init error", zap.Error(err))
	}
	return s3
}

func policyFromConfig(c config.ProtectionConfig) protect.Policy {
	return protect.Policy{
		Printing:      protect.ParsePrintLevel(c.Printing),
		Modify:        c.AllowModify,
		Copy:          c.AllowCopy,
		Annotate:      c.AllowAnnotate,
		FillForms:     c.AllowFill,
		ContentAccess: c.AllowContent,
		Assemble:      c.AllowAssembly,
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-PDF-Password, X-PDF-Password-Instruction")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
