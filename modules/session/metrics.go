package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricGenerationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "veo_studio",
		Name:      "generations_started_total",
		Help:      "Number of generation submissions accepted by session controllers.",
	})
	metricGenerationsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "veo_studio",
		Name:      "generations_succeeded_total",
		Help:      "Number of generations that resolved with a result.",
	})
	metricGenerationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veo_studio",
		Name:      "generations_failed_total",
		Help:      "Number of generations that failed, by classification.",
	}, []string{"kind"})
	metricCredentialChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veo_studio",
		Name:      "credential_checks_total",
		Help:      "Credential presence checks, by outcome.",
	}, []string{"result"})
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "veo_studio",
		Name:      "active_sessions",
		Help:      "Number of live generation sessions.",
	})
)

func recordGenerationStarted() {
	metricGenerationsStarted.Inc()
}

func recordGenerationSucceeded() {
	metricGenerationsSucceeded.Inc()
}

func recordGenerationFailed(kind ErrorKind) {
	metricGenerationsFailed.WithLabelValues(string(kind)).Inc()
}

func recordCredentialCheck(result string) {
	metricCredentialChecks.WithLabelValues(result).Inc()
}

func recordActiveSessions(count int) {
	metricActiveSessions.Set(float64(count))
}
