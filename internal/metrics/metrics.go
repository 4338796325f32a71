// Package metrics exposes the service's Prometheus collectors. Counters are
// package-level so any layer can record without plumbing a registry around.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_started_total",
		Help: "Number of interview sessions created.",
	})

	SessionsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_completed_total",
		Help: "Number of interview sessions completed with a final analysis.",
	})

	AgentCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_agent_calls_total",
		Help: "Outbound agent calls by agent id and outcome.",
	}, []string{"agent", "outcome"})

	FallbacksServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_fallbacks_served_total",
		Help: "Locally authored substitutes served after agent failures, by step.",
	}, []string{"step"})
)

func init() {
	prometheus.MustRegister(SessionsStarted, SessionsCompleted, AgentCalls, FallbacksServed)
}

// Handler serves the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
