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

	"github.com/bryanwahyu/hydrolens/internal/application"
	"github.com/bryanwahyu/hydrolens/internal/application/acquisition"
	apprequests "github.com/bryanwahyu/hydrolens/internal/application/requests"
	appscheduler "github.com/bryanwahyu/hydrolens/internal/application/scheduler"
	"github.com/bryanwahyu/hydrolens/internal/config"
	"github.com/bryanwahyu/hydrolens/internal/domain/analysis"
	"github.com/bryanwahyu/hydrolens/internal/domain/imagery"
	domainrequests "github.com/bryanwahyu/hydrolens/internal/domain/requests"
	"github.com/bryanwahyu/hydrolens/internal/domain/reservoirs"
	mysqlp "github.com/bryanwahyu/hydrolens/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/hydrolens/internal/infra/db/postgres"
	"github.com/bryanwahyu/hydrolens/internal/infra/httpserver"
	"github.com/bryanwahyu/hydrolens/internal/infra/imagery/sentinel"
	"github.com/bryanwahyu/hydrolens/internal/infra/renderer"
	minioStore "github.com/bryanwahyu/hydrolens/internal/infra/storage"
	"github.com/bryanwahyu/hydrolens/internal/middleware"
)

// repos kumpulan port persistence, diisi sesuai driver database
type repos struct {
	requests   domainrequests.Repository
	images     imagery.Repository
	reservoirs reservoirs.Repository
	models     analysis.ModelRepository
	analyses   *analysisRepos
}

type analysisRepos struct {
	groups  analysis.GroupRepository
	perDate analysis.Repository
	results analysis.ResultRepository
}

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

	// connect database sesuai driver
	db, rp, err := connect(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()

	// init minio staging
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

	// init provider citra
	provider := sentinel.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey)

	clock := application.SystemClock{}

	// init service akuisisi
	acquire := &acquisition.Service{
		Images:          rp.images,
		Provider:        provider,
		Blobs:           store,
		Clock:           clock,
		CheckInterval:   cfg.CheckInterval(),
		MaxWait:         cfg.MaxWait(),
		DownloadWorkers: cfg.Pipeline.DownloadWorkers,
	}

	// init pipeline service
	pipeline := &apprequests.Service{
		Requests:   rp.requests,
		Reservoirs: rp.reservoirs,
		Models:     rp.models,
		Groups:     rp.analyses.groups,
		Analyses:   rp.analyses.perDate,
		Results:    rp.analyses.results,
		Renderer:   renderer.New(),
		Acquire:    acquire,
		ChunkSize:  cfg.Pipeline.ChunkSize,
	}

	// init scheduler
	sched := &appscheduler.Scheduler{
		Requests: rp.requests,
		Pipeline: pipeline,
		Clock:    clock,
		Interval: cfg.PollInterval(),
		Workers:  cfg.Pipeline.Workers,
	}
	schedCtx, stopSched := context.WithCancel(ctx)
	go sched.Run(schedCtx)

	// init router
	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"staging": middleware.CheckerFunc(func(ctx context.Context) error {
			_, err := store.List(ctx, "healthz")
			return err
		}),
	}
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	if len(cfg.Server.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	}
	mux.Mount("/", httpserver.NewRouter(pipeline, rp.models, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
	log.Println("shutting down...")

	// scheduler dulu: request yang sedang jalan dibiarkan selesai
	stopSched()
	sched.Wait()

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func connect(ctx context.Context, cfg *config.Config) (*sql.DB, *repos, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		analyses := postgresp.NewAnalysisRepository(db)
		return db, &repos{
			requests:   postgresp.NewRequestRepository(db),
			images:     postgresp.NewImageRepository(db),
			reservoirs: postgresp.NewReservoirRepository(db),
			models:     postgresp.NewModelRepository(db),
			analyses:   &analysisRepos{groups: analyses, perDate: analyses, results: analyses},
		}, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		analyses := mysqlp.NewAnalysisRepository(db)
		return db, &repos{
			requests:   mysqlp.NewRequestRepository(db),
			images:     mysqlp.NewImageRepository(db),
			reservoirs: mysqlp.NewReservoirRepository(db),
			models:     mysqlp.NewModelRepository(db),
			analyses:   &analysisRepos{groups: analyses, perDate: analyses, results: analyses},
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.Server.AllowedOrigins) > 0 {
		return cfg.Server.AllowedOrigins
	}
	return []string{"*"}
}
