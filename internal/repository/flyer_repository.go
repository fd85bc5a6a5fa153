package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"ofertaspro/internal/model"
)

var ErrFlyerNotFound = errors.New("encarte não encontrado")

const timeLayout = "2006-01-02T15:04:05.000000Z"

// FlyerRepository guarda o registro dos encartes enviados e o resultado do processamento.
// Funciona com Postgres (lib/pq) e SQLite; as queries usam "?" e são reescritas para "$n" no Postgres.
type FlyerRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r *FlyerRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS encartes (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			file_type TEXT NOT NULL,
			status TEXT NOT NULL,
			produtos_adicionados INTEGER NOT NULL DEFAULT 0,
			erro TEXT NOT NULL DEFAULT '',
			criado_em TEXT NOT NULL
		)
	`)
	return err
}

func (r *FlyerRepository) Create(ctx context.Context, f model.Flyer) error {
	_, err := r.DB.ExecContext(ctx, r.rebind(`
		INSERT INTO encartes (id, file_name, file_type, status, produtos_adicionados, erro, criado_em)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), f.ID, f.FileName, f.FileType, string(f.Status), f.ProdutosAdicionados, f.Erro, f.CriadoEm.UTC().Format(timeLayout))
	return err
}

func (r *FlyerRepository) MarkProcessed(ctx context.Context, id string, produtos int) error {
	return r.update(ctx, id, model.FlyerProcessed, produtos, "")
}

func (r *FlyerRepository) MarkRejected(ctx context.Context, id string, reason string) error {
	return r.update(ctx, id, model.FlyerRejected, 0, reason)
}

func (r *FlyerRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.update(ctx, id, model.FlyerFailed, 0, reason)
}

func (r *FlyerRepository) update(ctx context.Context, id string, status model.FlyerStatus, produtos int, reason string) error {
	res, err := r.DB.ExecContext(ctx, r.rebind(`
		UPDATE encartes
		SET status = ?, produtos_adicionados = ?, erro = ?
		WHERE id = ?
	`), string(status), produtos, reason, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFlyerNotFound
	}
	return nil
}

func (r *FlyerRepository) Get(ctx context.Context, id string) (model.Flyer, error) {
	row := r.DB.QueryRowContext(ctx, r.rebind(`
		SELECT id, file_name, file_type, status, produtos_adicionados, erro, criado_em
		FROM encartes
		WHERE id = ?
	`), id)

	f, err := scanFlyer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flyer{}, ErrFlyerNotFound
	}
	return f, err
}

func (r *FlyerRepository) ListRecent(ctx context.Context, limit int) ([]model.Flyer, error) {
	rows, err := r.DB.QueryContext(ctx, r.rebind(`
		SELECT id, file_name, file_type, status, produtos_adicionados, erro, criado_em
		FROM encartes
		ORDER BY criado_em DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Flyer
	for rows.Next() {
		f, err := scanFlyer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlyer(s scanner) (model.Flyer, error) {
	var f model.Flyer
	var status, criadoEm string
	if err := s.Scan(&f.ID, &f.FileName, &f.FileType, &status, &f.ProdutosAdicionados, &f.Erro, &criadoEm); err != nil {
		return model.Flyer{}, err
	}
	f.Status = model.FlyerStatus(status)
	t, err := time.Parse(timeLayout, criadoEm)
	if err != nil {
		return model.Flyer{}, err
	}
	f.CriadoEm = t
	return f, nil
}

func (r *FlyerRepository) rebind(query string) string {
	if r.Dialect != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
