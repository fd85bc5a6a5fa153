package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"ofertaspro/internal/model"
)

const (
	snapshotPrefix = "ofertaspro:catalogo:"
	generationKey  = "ofertaspro:catalogo:geracao"
)

func snapshotKey(gen int64) string { return snapshotPrefix + strconv.FormatInt(gen, 10) }

// NewClient aceita tanto "host:porta" quanto uma URL redis://.
func NewClient(url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	return redis.NewClient(opts)
}

// SnapshotStore guarda no Redis uma cópia do catálogo completo.
// Cada snapshot pertence a uma geração; Invalidate avança a geração, então um Set feito
// com a geração antiga nunca volta a ser lido.
type SnapshotStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// Generation devolve a geração atual (0 enquanto nada foi invalidado).
func (s *SnapshotStore) Generation(ctx context.Context) (int64, error) {
	gen, err := s.Client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get devolve o snapshot da geração atual e a geração lida.
// ok=false quando a chave não existe ou expirou.
func (s *SnapshotStore) Get(ctx context.Context) (products []model.Product, gen int64, ok bool, err error) {
	gen, err = s.Generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	val, err := s.Client.Get(ctx, snapshotKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}

	if err := json.Unmarshal(val, &products); err != nil {
		return nil, gen, false, err
	}
	return products, gen, true, nil
}

// Set grava o snapshot na geração lida antes da consulta à fonte.
func (s *SnapshotStore) Set(ctx context.Context, gen int64, products []model.Product) error {
	b, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, snapshotKey(gen), b, s.TTL).Err()
}

func (s *SnapshotStore) Invalidate(ctx context.Context) error {
	gen, err := s.Client.Incr(ctx, generationKey).Result()
	if err != nil {
		return err
	}
	return s.Client.Del(ctx, snapshotKey(gen-1)).Err()
}

type ProductSource interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// CachedCatalog lê o catálogo passando pelo snapshot. Sem Store, lê direto da fonte.
// Falhas do Redis são só logadas: a fonte continua sendo a verdade.
type CachedCatalog struct {
	Source ProductSource
	Store  *SnapshotStore
	Log    logrus.FieldLogger
}

func (c *CachedCatalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	var (
		gen      int64
		writable bool
	)
	if c.Store != nil {
		products, g, ok, err := c.Store.Get(ctx)
		if err != nil {
			c.logger().WithError(err).Warn("falha ao ler snapshot do catálogo")
		}
		if ok {
			return products, nil
		}
		gen, writable = g, err == nil
	}

	products, err := c.Source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if writable {
		if err := c.Store.Set(ctx, gen, products); err != nil {
			c.logger().WithError(err).Warn("falha ao gravar snapshot do catálogo")
		}
	}
	return products, nil
}

func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Invalidate(ctx)
}

func (c *CachedCatalog) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}
