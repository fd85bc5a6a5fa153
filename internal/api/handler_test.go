package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ofertaspro/internal/catalog"
	"ofertaspro/internal/extraction"
	"ofertaspro/internal/flyer"
	"ofertaspro/internal/model"
	"ofertaspro/internal/repository"
)

type stubCatalog struct {
	products []model.Product
	err      error
}

func (s *stubCatalog) ListProducts(context.Context) ([]model.Product, error) {
	return s.products, s.err
}

type stubUploader struct {
	gotName string
	gotBody string
	flyer   model.Flyer
	err     error
}

func (s *stubUploader) Upload(_ context.Context, name string, r io.Reader) (model.Flyer, error) {
	s.gotName = name
	b, _ := io.ReadAll(r)
	s.gotBody = string(b)
	return s.flyer, s.err
}

type stubLedger struct {
	flyers []model.Flyer
	limit  int
}

func (s *stubLedger) Get(_ context.Context, id string) (model.Flyer, error) {
	for _, f := range s.flyers {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Flyer{}, repository.ErrFlyerNotFound
}

func (s *stubLedger) ListRecent(_ context.Context, limit int) ([]model.Flyer, error) {
	s.limit = limit
	return s.flyers, nil
}

func catalogFixture() []model.Product {
	return []model.Product{
		{
			ID: "1", Nome: "Arroz", Categoria: model.CategoryFood,
			Ofertas: []model.Offer{
				{Estabelecimento: "Loja A", Preco: 10, PrecoAnterior: 12, ValidoAte: "2025-10-31"},
				{Estabelecimento: "Loja B", Preco: 9, PrecoAnterior: 10, ValidoAte: "2025-10-20"},
			},
		},
		{
			ID: "2", Nome: "Feijão", Categoria: model.CategoryFood,
			Ofertas: []model.Offer{{Estabelecimento: "Loja A", Preco: 8, PrecoAnterior: 10, ValidoAte: "2025-10-25"}},
		},
		{
			ID: "3", Nome: "Sabonete", Categoria: model.CategoryHygiene,
			Ofertas: []model.Offer{{Estabelecimento: "Loja C", Preco: 2, PrecoAnterior: 2, ValidoAte: "2025-11-01"}},
		},
	}
}

type testEnv struct {
	catalog  *stubCatalog
	uploader *stubUploader
	ledger   *stubLedger
	server   http.Handler
}

func newTestEnv() *testEnv {
	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &testEnv{
		catalog:  &stubCatalog{products: catalogFixture()},
		uploader: &stubUploader{},
		ledger:   &stubLedger{},
	}
	h := &Handler{Catalog: env.catalog, Ingest: env.uploader, Flyers: env.ledger, Log: log}
	env.server = New(h, log, prometheus.NewRegistry())
	return env
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func TestListProducts_DefaultSortIsDiscount(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/produtos", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Feijão", "Arroz", "Sabonete"}, []string{got[0].Nome, got[1].Nome, got[2].Nome})
}

func TestListProducts_FilterSearchAndSort(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/produtos?categoria=alimentos&ordenacao=preco", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Feijão", got[0].Nome)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/produtos?busca=SABO", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Sabonete", got[0].Nome)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/produtos?categoria=eletronicos", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListProducts_UnknownSortKey(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/produtos?ordenacao=popularidade", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ordenação desconhecida")
}

func TestListProducts_CatalogFailure(t *testing.T) {
	env := newTestEnv()
	env.catalog.err = errors.New("pool fechado")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/produtos", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pool fechado")
}

func TestListCards(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/produtos/cards?ordenacao=alfabetica", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []catalog.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	require.Len(t, cards, 3)
	assert.Equal(t, "Arroz", cards[0].Nome)
	assert.Equal(t, "Loja B", cards[0].MelhorOferta.Estabelecimento)
	assert.Equal(t, 10, cards[0].MelhorOferta.Desconto)
	assert.Equal(t, "20/10", cards[0].MelhorOferta.ValidoAteBR)
	assert.Equal(t, 1, cards[0].OutrasOfertas)
}

func TestExportCards(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/produtos/planilha?categoria=higiene", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ofertas.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Ofertas")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sabonete", rows[1][0])
}

func TestExportCards_WriteFailureIsServerError(t *testing.T) {
	orig := writeCards
	writeCards = func([]catalog.Card, io.Writer) error { return errors.New("disco cheio") }
	t.Cleanup(func() { writeCards = orig })
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/produtos/planilha", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rec.Body.String(), "falha ao gerar planilha")
}

func TestOptions(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/categorias", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []model.Option
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.Equal(t, model.Categories(), cats)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/ordenacoes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sorts []model.Option
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sorts))
	assert.Equal(t, model.SortOptions(), sorts)
}

func multipartUpload(t *testing.T, field, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/encartes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadFlyer(t *testing.T) {
	env := newTestEnv()
	env.uploader.flyer = model.Flyer{ID: "enc-1", FileName: "folheto.pdf", Status: model.FlyerProcessed, ProdutosAdicionados: 7}

	rec := env.do(multipartUpload(t, "arquivo", "folheto.pdf", "%PDF-1.4"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "folheto.pdf", env.uploader.gotName)
	assert.Equal(t, "%PDF-1.4", env.uploader.gotBody)

	var got model.Flyer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 7, got.ProdutosAdicionados)
}

func TestUploadFlyer_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"encarte inválido", fmt.Errorf("%w: %w", flyer.ErrValidation, flyer.ErrNoProducts), http.StatusUnprocessableEntity},
		{"número ilegível", &flyer.FormatError{Field: "preco", Value: "abc"}, http.StatusUnprocessableEntity},
		{"extensão", extraction.ErrUnsupportedFile, http.StatusUnsupportedMediaType},
		{"infraestrutura", errors.New("timeout"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			env.uploader.err = tc.err
			env.uploader.flyer = model.Flyer{ID: "enc-1", Status: model.FlyerRejected}

			rec := env.do(multipartUpload(t, "arquivo", "folheto.png", "png"))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestUploadFlyer_MissingField(t *testing.T) {
	env := newTestEnv()

	rec := env.do(multipartUpload(t, "outro", "folheto.png", "png"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.uploader.gotName)
}

func TestFlyers(t *testing.T) {
	env := newTestEnv()
	env.ledger.flyers = []model.Flyer{{ID: "enc-1", Status: model.FlyerProcessed, CriadoEm: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)}}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/encartes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, env.ledger.limit)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/encartes?limite=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, env.ledger.limit)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/encartes?limite=1000", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/encartes/enc-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/encartes/nada", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
