package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ofertaspro/internal/flyer"
	"ofertaspro/internal/model"
)

// CatalogRepository persiste produtos e ofertas no Postgres.
// Produtos são únicos pela chave nome|marca normalizada; cada encarte acrescenta ofertas.
type CatalogRepository struct {
	DB *pgxpool.Pool
}

func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS produtos (
			id TEXT PRIMARY KEY,
			chave TEXT NOT NULL UNIQUE,
			nome TEXT NOT NULL,
			marca TEXT NOT NULL DEFAULT '',
			categoria TEXT NOT NULL,
			criado_em TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ofertas (
			id UUID PRIMARY KEY,
			seq BIGSERIAL,
			produto_id TEXT NOT NULL REFERENCES produtos(id) ON DELETE CASCADE,
			estabelecimento TEXT NOT NULL,
			endereco TEXT NOT NULL,
			preco DOUBLE PRECISION NOT NULL,
			preco_anterior DOUBLE PRECISION NOT NULL,
			valido_ate TEXT NOT NULL DEFAULT '',
			criado_em TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS ofertas_produto_idx ON ofertas (produto_id);
	`)
	return err
}

// SaveProducts grava os produtos agrupados de um encarte numa única transação e devolve
// quantas ofertas foram adicionadas. Produto já existente recebe as novas ofertas e sobe para o topo.
func (r *CatalogRepository) SaveProducts(ctx context.Context, products []model.Product) (int, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range products {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO produtos (id, chave, nome, marca, categoria, criado_em)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (chave) DO UPDATE SET criado_em = EXCLUDED.criado_em
			RETURNING id
		`, p.ID, flyer.ProductKey(p.Nome, p.Marca), p.Nome, p.Marca, string(p.Categoria), p.CriadoEm).Scan(&id)
		if err != nil {
			return 0, err
		}

		for _, o := range p.Ofertas {
			batch.Queue(`
				INSERT INTO ofertas (id, produto_id, estabelecimento, endereco, preco, preco_anterior, valido_ate)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, uuid.New(), id, strings.ToValidUTF8(o.Estabelecimento, ""), o.Endereco, o.Preco, o.PrecoAnterior, o.ValidoAte)
		}
	}

	added := batch.Len()
	if added > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return added, nil
}

// ListProducts devolve o catálogo do mais recente para o mais antigo, com as ofertas na ordem de chegada.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.nome, p.marca, p.categoria, p.criado_em,
		       o.id::text, COALESCE(o.estabelecimento, ''), COALESCE(o.endereco, ''),
		       COALESCE(o.preco, 0), COALESCE(o.preco_anterior, 0), COALESCE(o.valido_ate, '')
		FROM produtos p
		LEFT JOIN ofertas o ON o.produto_id = p.id
		ORDER BY p.criado_em DESC, p.id, o.seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return foldProducts(rows)
}

// productRows é o subconjunto de pgx.Rows usado para montar o catálogo.
type productRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// foldProducts junta as linhas do LEFT JOIN (uma por oferta, ou uma só com oferta nula)
// em produtos com suas ofertas, na ordem em que chegam.
func foldProducts(rows productRows) ([]model.Product, error) {
	var list []model.Product
	for rows.Next() {
		var (
			p       model.Product
			cat     string
			offerID *string
			o       model.Offer
		)
		if err := rows.Scan(&p.ID, &p.Nome, &p.Marca, &cat, &p.CriadoEm,
			&offerID, &o.Estabelecimento, &o.Endereco, &o.Preco, &o.PrecoAnterior, &o.ValidoAte); err != nil {
			return nil, err
		}

		if n := len(list); n == 0 || list[n-1].ID != p.ID {
			p.Categoria = model.Category(cat)
			list = append(list, p)
		}
		if offerID != nil {
			last := &list[len(list)-1]
			last.Ofertas = append(last.Ofertas, o)
		}
	}
	return list, rows.Err()
}

// PurgeExpired remove ofertas vencidas antes de "before" e os produtos que ficaram sem ofertas.
// Validades que não começam com AAAA-MM-DD são mantidas.
func (r *CatalogRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM ofertas
		WHERE valido_ate ~ '^\d{4}-\d{2}-\d{2}'
		  AND substring(valido_ate from 1 for 10) < $1
	`, before.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM produtos p
		WHERE NOT EXISTS (SELECT 1 FROM ofertas o WHERE o.produto_id = p.id)
	`); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
