package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ofertaspro/internal/api"
	"ofertaspro/internal/cache"
	"ofertaspro/internal/config"
	"ofertaspro/internal/db"
	"ofertaspro/internal/extraction"
	"ofertaspro/internal/ingest"
	"ofertaspro/internal/observability"
	"ofertaspro/internal/repository"
	"ofertaspro/internal/schedule"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.LogLevel, cfg.LogFile)

	for name, value := range map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"OPENAI_API_KEY": cfg.OpenAIKey,
	} {
		if err := cfg.Require(name, value); err != nil {
			log.Fatal(err)
		}
	}

	prometheus.MustRegister(observability.Collectors()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Erro ao conectar no Postgres (pgxpool): %v", err)
	}
	defer pool.Close()

	dbConn, err := db.New(cfg.FlyerDBDriver, cfg.FlyerDBDSN)
	if err != nil {
		log.Fatalf("Erro ao abrir o banco de encartes: %v", err)
	}
	defer dbConn.Close()

	catalogRepo := &repository.CatalogRepository{DB: pool}
	flyerRepo := &repository.FlyerRepository{DB: dbConn, Dialect: cfg.FlyerDBDriver}
	if err := catalogRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Erro ao criar tabelas do catálogo: %v", err)
	}
	if err := flyerRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Erro ao criar tabela de encartes: %v", err)
	}

	var snapshots *cache.SnapshotStore
	if cfg.RedisURL != "" {
		client := cache.NewClient(cfg.RedisURL)
		defer client.Close()
		snapshots = &cache.SnapshotStore{Client: client, TTL: time.Duration(cfg.SnapshotTTLSec) * time.Second}
	} else {
		log.Warn("REDIS_URL vazio: catálogo lido direto do Postgres")
	}
	cachedCatalog := &cache.CachedCatalog{Source: catalogRepo, Store: snapshots, Log: log}

	svc := &ingest.Service{
		Flyers:    flyerRepo,
		Catalog:   catalogRepo,
		Cache:     cachedCatalog,
		Extractor: extraction.NewOpenAIExtractor(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ExtractionRPS),
		UploadDir: cfg.UploadDir,
		Log:       log,
	}

	scheduler, err := schedule.Start(cfg.PurgeSchedule, &schedule.PurgeJob{
		Catalog: catalogRepo,
		Cache:   cachedCatalog,
		Log:     log,
	})
	if err != nil {
		log.Fatalf("PURGE_SCHEDULE inválido (%s): %v", cfg.PurgeSchedule, err)
	}

	e := api.New(&api.Handler{
		Catalog: cachedCatalog,
		Ingest:  svc,
		Flyers:  flyerRepo,
		Log:     log,
	}, log, nil)

	go func() {
		log.Infof("API de ofertas rodando :%s", cfg.HTTPPort)
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Erro no servidor HTTP: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("encerrando")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("falha ao encerrar o servidor HTTP")
	}
	<-scheduler.Stop().Done()
}
