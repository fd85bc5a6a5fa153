package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"ofertaspro/internal/catalog"
	"ofertaspro/internal/export"
	"ofertaspro/internal/extraction"
	"ofertaspro/internal/ingest"
	"ofertaspro/internal/model"
	"ofertaspro/internal/repository"
)

type ProductLister interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

type FlyerUploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (model.Flyer, error)
}

type FlyerLedger interface {
	Get(ctx context.Context, id string) (model.Flyer, error)
	ListRecent(ctx context.Context, limit int) ([]model.Flyer, error)
}

type Handler struct {
	Catalog ProductLister
	Ingest  FlyerUploader
	Flyers  FlyerLedger
	Log     logrus.FieldLogger
}

type viewQuery struct {
	Categoria string `query:"categoria" validate:"max=40"`
	Busca     string `query:"busca" validate:"max=100"`
	Ordenacao string `query:"ordenacao" validate:"max=20"`
}

type listQuery struct {
	Limite int `query:"limite" validate:"omitempty,min=1,max=200"`
}

type errorResponse struct {
	Erro    string       `json:"erro"`
	Encarte *model.Flyer `json:"encarte,omitempty"`
}

func fail(c echo.Context, code int, err error) error {
	return c.JSON(code, errorResponse{Erro: err.Error()})
}

func (h *Handler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, model.Categories())
}

func (h *Handler) SortOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, model.SortOptions())
}

// view lê o catálogo e aplica filtro e ordenação da query string.
// Em caso de erro devolve também o status HTTP correspondente.
func (h *Handler) view(c echo.Context) ([]model.Product, int, error) {
	var q viewQuery
	if err := c.Bind(&q); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if err := c.Validate(&q); err != nil {
		return nil, http.StatusBadRequest, err
	}

	key, err := model.ParseSortKey(q.Ordenacao)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	products, err := h.Catalog.ListProducts(c.Request().Context())
	if err != nil {
		h.logger().WithError(err).Error("falha ao listar catálogo")
		return nil, http.StatusInternalServerError, errors.New("falha ao carregar o catálogo")
	}
	return catalog.BuildView(products, q.Categoria, q.Busca, key), http.StatusOK, nil
}

func (h *Handler) ListProducts(c echo.Context) error {
	products, code, err := h.view(c)
	if err != nil {
		return fail(c, code, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) ListCards(c echo.Context) error {
	products, code, err := h.view(c)
	if err != nil {
		return fail(c, code, err)
	}
	return c.JSON(http.StatusOK, catalog.Cards(products))
}

func (h *Handler) ExportCards(c echo.Context) error {
	products, code, err := h.view(c)
	if err != nil {
		return fail(c, code, err)
	}

	var buf bytes.Buffer
	if err := writeCards(catalog.Cards(products), &buf); err != nil {
		h.logger().WithError(err).Error("falha ao gerar planilha")
		return fail(c, http.StatusInternalServerError, errors.New("falha ao gerar planilha"))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="ofertas.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var writeCards = export.WriteCards

// UploadFlyer recebe o arquivo no campo "arquivo" e processa o encarte na hora.
func (h *Handler) UploadFlyer(c echo.Context) error {
	fh, err := c.FormFile("arquivo")
	if err != nil {
		return fail(c, http.StatusBadRequest, errors.New("campo \"arquivo\" obrigatório"))
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	defer src.Close()

	f, err := h.Ingest.Upload(c.Request().Context(), fh.Filename, src)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, f)
	case errors.Is(err, extraction.ErrUnsupportedFile):
		return fail(c, http.StatusUnsupportedMediaType, err)
	case ingest.IsRejection(err):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Erro: err.Error(), Encarte: &f})
	}

	h.logger().WithError(err).WithField("arquivo", fh.Filename).Error("falha no envio de encarte")
	if f.ID != "" {
		return c.JSON(http.StatusInternalServerError, errorResponse{Erro: "falha ao processar o encarte", Encarte: &f})
	}
	return fail(c, http.StatusInternalServerError, errors.New("falha ao processar o encarte"))
}

func (h *Handler) ListFlyers(c echo.Context) error {
	var q listQuery
	if err := c.Bind(&q); err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&q); err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	if q.Limite == 0 {
		q.Limite = 20
	}

	list, err := h.Flyers.ListRecent(c.Request().Context(), q.Limite)
	if err != nil {
		h.logger().WithError(err).Error("falha ao listar encartes")
		return fail(c, http.StatusInternalServerError, errors.New("falha ao listar encartes"))
	}
	if list == nil {
		list = []model.Flyer{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetFlyer(c echo.Context) error {
	f, err := h.Flyers.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrFlyerNotFound) {
		return fail(c, http.StatusNotFound, err)
	}
	if err != nil {
		h.logger().WithError(err).Error("falha ao buscar encarte")
		return fail(c, http.StatusInternalServerError, errors.New("falha ao buscar encarte"))
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) logger() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}
