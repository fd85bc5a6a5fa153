// Package api expõe o catálogo e o envio de encartes por HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// New monta o echo com middlewares e rotas. gatherer nil usa o registry padrão do Prometheus.
func New(h *Handler, log logrus.FieldLogger, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.BodyLimit("25M"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	e.GET("/categorias", h.Categories)
	e.GET("/ordenacoes", h.SortOptions)
	e.GET("/produtos", h.ListProducts)
	e.GET("/produtos/cards", h.ListCards)
	e.GET("/produtos/planilha", h.ExportCards)
	e.POST("/encartes", h.UploadFlyer)
	e.GET("/encartes", h.ListFlyers)
	e.GET("/encartes/:id", h.GetFlyer)

	return e
}

func requestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			entry := log.WithFields(logrus.Fields{
				"metodo":     req.Method,
				"rota":       c.Path(),
				"uri":        req.RequestURI,
				"status":     res.Status,
				"duracao_ms": time.Since(start).Milliseconds(),
				"request_id": res.Header().Get(echo.HeaderXRequestID),
			})
			if res.Status >= http.StatusInternalServerError {
				entry.Error("requisição com erro")
			} else {
				entry.Info("requisição atendida")
			}
			return nil
		}
	}
}
