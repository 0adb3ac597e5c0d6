package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/auditflow/internal/application"
	appai "github.com/bryanwahyu/auditflow/internal/application/ai"
	appaudits "github.com/bryanwahyu/auditflow/internal/application/audits"
	appcatalog "github.com/bryanwahyu/auditflow/internal/application/catalog"
	appreports "github.com/bryanwahyu/auditflow/internal/application/reports"
	"github.com/bryanwahyu/auditflow/internal/config"
	domai "github.com/bryanwahyu/auditflow/internal/domain/ai"
	"github.com/bryanwahyu/auditflow/internal/domain/audits"
	"github.com/bryanwahyu/auditflow/internal/domain/catalog"
	"github.com/bryanwahyu/auditflow/internal/domain/responses"
	openaiClient "github.com/bryanwahyu/auditflow/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/auditflow/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/auditflow/internal/infra/db/postgres"
	"github.com/bryanwahyu/auditflow/internal/infra/httpserver"
	excelRenderer "github.com/bryanwahyu/auditflow/internal/infra/report/excel"
	pdfRenderer "github.com/bryanwahyu/auditflow/internal/infra/report/pdf"
	minioStore "github.com/bryanwahyu/auditflow/internal/infra/storage"
	"github.com/bryanwahyu/auditflow/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database (driver from config)
	var (
		db           *sql.DB
		frameworks   catalog.FrameworkRepository
		controls     catalog.ControlRepository
		auditRepo    audits.Repository
		responseRepo responses.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		frameworks = postgresp.NewFrameworkRepository(db)
		controls = postgresp.NewControlRepository(db)
		auditRepo = postgresp.NewAuditRepository(db)
		responseRepo = postgresp.NewResponseRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		frameworks = mysqlp.NewFrameworkRepository(db)
		controls = mysqlp.NewControlRepository(db)
		auditRepo = mysqlp.NewAuditRepository(db)
		responseRepo = mysqlp.NewResponseRepository(db)
	}
	defer db.Close()

	// init minio evidence store
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init AI client; nil client = recommendations unavailable
	var aiClient domai.Client
	if cfg.OpenAI.APIKey != "" {
		aiClient = openaiClient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	// init services
	catalogSvc := &appcatalog.Service{Frameworks: frameworks, Controls: controls}
	auditsSvc := &appaudits.Service{
		Audits:    auditRepo,
		Responses: responseRepo,
		Catalog:   catalogSvc,
		Clock:     application.SystemClock{},
	}
	aiSvc := &appai.Service{
		Client:    aiClient,
		Audits:    auditRepo,
		Responses: responseRepo,
		Catalog:   catalogSvc,
	}
	reportsSvc := &appreports.Service{
		Audits:    auditRepo,
		Responses: responseRepo,
		Catalog:   catalogSvc,
		PDF:       pdfRenderer.New(),
		Excel:     excelRenderer.New(),
		Clock:     application.SystemClock{},
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	capacity, refill := cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate
	if capacity <= 0 {
		capacity = 60
	}
	if refill <= 0 {
		refill = 1
	}
	mux.Use(middleware.RateLimitMiddleware(capacity, refill))

	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database":       &middleware.DatabaseHealthChecker{DB: db},
		"evidence_store": store,
	}))
	mux.Mount("/", httpserver.NewRouter(auditsSvc, catalogSvc, aiSvc, reportsSvc, store))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
