// Package metrics exposes the simulator's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	OrdersReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiximulator_orders_received_total",
		Help: "Inbound NewOrderSingle messages accepted for processing.",
	})

	CancelRequestsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiximulator_cancel_requests_received_total",
		Help: "Inbound OrderCancelRequest messages.",
	})

	ReplaceRequestsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiximulator_replace_requests_received_total",
		Help: "Inbound OrderCancelReplaceRequest messages.",
	})

	ExecutionsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiximulator_executions_sent_total",
		Help: "Outbound execution reports.",
	})

	CancelRejectsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiximulator_cancel_rejects_sent_total",
		Help: "Outbound order cancel rejects.",
	})

	IOIsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiximulator_iois_sent_total",
		Help: "Outbound indications of interest.",
	})

	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiximulator_send_failures_total",
		Help: "Outbound messages the session layer failed to send.",
	})
)

// StartServer serves /metrics on addr in the background.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			zap.S().Errorf("metrics server stopped: %v", err)
		}
	}()
}
