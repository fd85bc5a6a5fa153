// Package ingest recebe arquivos de encarte e leva as ofertas extraídas até o catálogo.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ofertaspro/internal/extraction"
	"ofertaspro/internal/flyer"
	"ofertaspro/internal/model"
	"ofertaspro/internal/observability"
)

type FlyerStore interface {
	Create(ctx context.Context, f model.Flyer) error
	MarkProcessed(ctx context.Context, id string, produtos int) error
	MarkRejected(ctx context.Context, id string, reason string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type CatalogStore interface {
	SaveProducts(ctx context.Context, products []model.Product) (int, error)
}

type SnapshotInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service processa um encarte por vez; o pool em worker.go chama Process em paralelo.
type Service struct {
	Flyers    FlyerStore
	Catalog   CatalogStore
	Cache     SnapshotInvalidator
	Extractor extraction.Extractor
	UploadDir string
	Log       logrus.FieldLogger

	NewID func() string
	Now   func() time.Time
}

// Upload grava o arquivo enviado em <UploadDir>/encartes e processa o encarte.
func (s *Service) Upload(ctx context.Context, name string, r io.Reader) (model.Flyer, error) {
	name = filepath.Base(name)
	if _, err := extraction.DetectKind(name); err != nil {
		return model.Flyer{}, err
	}

	dir := filepath.Join(s.UploadDir, "encartes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.Flyer{}, err
	}

	path := filepath.Join(dir, s.newID()+"_"+name)
	out, err := os.Create(path)
	if err != nil {
		return model.Flyer{}, err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return model.Flyer{}, err
	}
	if err := out.Close(); err != nil {
		return model.Flyer{}, err
	}

	return s.Process(ctx, path)
}

// Process registra o encarte e roda extração, validação, normalização e gravação.
// Encarte inválido volta com erro que casa com flyer.ErrValidation ou flyer.ErrFormat.
func (s *Service) Process(ctx context.Context, path string) (model.Flyer, error) {
	name := filepath.Base(path)
	if _, err := extraction.DetectKind(name); err != nil {
		return model.Flyer{}, err
	}

	f := model.Flyer{
		ID:       s.newID(),
		FileName: name,
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		Status:   model.FlyerReceived,
		CriadoEm: s.now(),
	}
	if err := s.Flyers.Create(ctx, f); err != nil {
		return f, fmt.Errorf("registrar encarte: %w", err)
	}

	log := s.logger().WithFields(logrus.Fields{"encarte": f.ID, "arquivo": name})
	log.Info("encarte recebido")

	added, err := s.run(ctx, path)
	if err != nil {
		return s.finishWithError(ctx, f, log, err)
	}

	if err := s.Flyers.MarkProcessed(ctx, f.ID, added); err != nil {
		return f, fmt.Errorf("atualizar encarte: %w", err)
	}
	f.Status = model.FlyerProcessed
	f.ProdutosAdicionados = added

	observability.FlyersTotal.WithLabelValues(string(model.FlyerProcessed)).Inc()
	observability.ProductsAdded.Add(float64(added))
	log.WithField("produtos", added).Info("encarte processado")
	return f, nil
}

func (s *Service) run(ctx context.Context, path string) (int, error) {
	doc, err := extraction.Load(path)
	if err != nil {
		return 0, err
	}

	payload, err := s.Extractor.Extract(ctx, doc)
	if err != nil {
		return 0, err
	}

	items, err := flyer.NormalizeAll(payload)
	if err != nil {
		return 0, err
	}

	products := flyer.Group(items, s.newID, s.now())
	added, err := s.Catalog.SaveProducts(ctx, products)
	if err != nil {
		return 0, fmt.Errorf("gravar catálogo: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			s.logger().WithError(err).Warn("falha ao invalidar snapshot do catálogo")
		}
	}
	return added, nil
}

func (s *Service) finishWithError(ctx context.Context, f model.Flyer, log logrus.FieldLogger, cause error) (model.Flyer, error) {
	f.Erro = cause.Error()

	var mark func(context.Context, string, string) error
	if IsRejection(cause) {
		f.Status = model.FlyerRejected
		mark = s.Flyers.MarkRejected
		log.WithField("erro", f.Erro).Warn("encarte rejeitado")
	} else {
		f.Status = model.FlyerFailed
		mark = s.Flyers.MarkFailed
		log.WithField("erro", f.Erro).Error("falha ao processar encarte")
	}
	observability.FlyersTotal.WithLabelValues(string(f.Status)).Inc()

	// registra o resultado mesmo com o contexto da requisição cancelado
	if err := mark(context.WithoutCancel(ctx), f.ID, f.Erro); err != nil {
		log.WithError(err).Error("falha ao atualizar status do encarte")
	}
	return f, cause
}

// IsRejection diz se o erro é do conteúdo do encarte (e não de infraestrutura).
func IsRejection(err error) bool {
	return errors.Is(err, flyer.ErrValidation) ||
		errors.Is(err, flyer.ErrFormat) ||
		errors.Is(err, extraction.ErrEmptyDocument)
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}
