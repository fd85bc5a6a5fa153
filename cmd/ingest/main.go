package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"ofertaspro/internal/cache"
	"ofertaspro/internal/config"
	"ofertaspro/internal/crawler"
	"ofertaspro/internal/db"
	"ofertaspro/internal/extraction"
	"ofertaspro/internal/ingest"
	"ofertaspro/internal/observability"
	"ofertaspro/internal/repository"
)

// go run ./cmd/ingest -dir=./encartes
// go run ./cmd/ingest -dir=./encartes -workers=2
// go run ./cmd/ingest -urls="https://loja.com.br/encarte.pdf,https://loja.com.br/ofertas"
func main() {
	dir := flag.String("dir", "", "Diretório com os arquivos de encarte (pdf, png, jpg, html)")
	urls := flag.String("urls", "", "URLs de encartes publicados, separadas por vírgula")
	cfg := config.Load()
	workers := flag.Int("workers", cfg.WorkerCount, "Quantidade de encartes processados em paralelo")
	flag.Parse()

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err := cfg.Require("DATABASE_URL", cfg.DatabaseURL); err != nil {
		log.Fatal(err)
	}
	if err := cfg.Require("OPENAI_API_KEY", cfg.OpenAIKey); err != nil {
		log.Fatal(err)
	}
	if *dir == "" && *urls == "" {
		log.Fatal("informe -dir ou -urls")
	}

	observability.Start(cfg.MetricsPort)

	// registrado primeiro para rodar depois dos demais defers
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var paths []string
	if *dir != "" {
		local, err := flyerFiles(*dir)
		if err != nil {
			log.Fatalf("Erro ao listar %s: %v", *dir, err)
		}
		paths = append(paths, local...)
	}
	if *urls != "" {
		fetcher := &crawler.Fetcher{Dir: filepath.Join(cfg.UploadDir, "encartes"), Log: log}
		paths = append(paths, fetcher.FetchAll(ctx, strings.Split(*urls, ","))...)
	}
	if len(paths) == 0 {
		log.Info("Nenhum encarte para processar")
		return
	}

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

	svc := &ingest.Service{
		Flyers:    flyerRepo,
		Catalog:   catalogRepo,
		Extractor: extraction.NewOpenAIExtractor(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ExtractionRPS),
		UploadDir: cfg.UploadDir,
		Log:       log,
	}
	if cfg.RedisURL != "" {
		client := cache.NewClient(cfg.RedisURL)
		defer client.Close()
		svc.Cache = &cache.SnapshotStore{Client: client}
	}

	log.Infof("Processando %d encartes com %d workers", len(paths), *workers)
	outcomes := ingest.RunWorkers(ctx, paths, svc, *workers)

	for _, o := range outcomes {
		if o.Err != nil {
			log.WithFields(logrus.Fields{"arquivo": o.Path, "erro": o.Err}).Warn("encarte não processado")
		}
	}

	s := ingest.Summarize(outcomes)
	log.WithFields(logrus.Fields{
		"processados": s.Processed,
		"rejeitados":  s.Rejected,
		"falhas":      s.Failed,
		"produtos":    s.Products,
	}).Info("Ingestão finalizada")

	if s.Failed > 0 {
		exitCode = 1
	}
}

// flyerFiles lista os arquivos suportados do diretório, em ordem alfabética.
func flyerFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := extraction.DetectKind(e.Name()); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
