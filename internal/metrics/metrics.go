package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EntriesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "audit_trail_entries_total", Help: "Entradas gravadas na trilha"},
		[]string{"action"},
	)
	AppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "audit_trail_append_failures_total", Help: "Falhas de gravação"},
	)
	SensitiveMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "audit_trail_sensitive_matches_total", Help: "Ações sensíveis detectadas"},
		[]string{"rule"},
	)
	VerifyRuns = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "audit_trail_verify_runs_total", Help: "Verificações executadas"},
	)
	ChainValid = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "audit_trail_chain_valid", Help: "1 se a cadeia atual verifica, 0 se não"},
	)
)

func MustRegister() {
	prometheus.MustRegister(EntriesAppended, AppendFailures, SensitiveMatches, VerifyRuns, ChainValid)
}
func Handler() http.Handler { return promhttp.Handler() }
