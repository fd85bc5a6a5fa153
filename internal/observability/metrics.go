package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FlyersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encartes_processados_total",
			Help: "Total de encartes processados por status",
		},
		[]string{"status"},
	)

	ProductsAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "produtos_adicionados_total",
			Help: "Total de ofertas adicionadas ao catálogo",
		},
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extracao_duracao_segundos",
			Help:    "Duração da chamada de extração do encarte",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		},
	)
)

// Collectors lista as métricas da aplicação para registro.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{FlyersTotal, ProductsAdded, ExtractionDuration}
}

// Start registra as métricas e expõe /metrics numa porta própria.
func Start(port string) {
	prometheus.MustRegister(Collectors()...)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, mux)
}
