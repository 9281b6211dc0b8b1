package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AlertsTriggered counts SOS alerts accepted for dispatch.
	AlertsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifeline_alerts_triggered_total",
		Help: "Number of SOS alerts triggered.",
	})

	// AlertsResolved counts active-to-resolved transitions.
	AlertsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifeline_alerts_resolved_total",
		Help: "Number of alerts transitioned to resolved.",
	})

	// NotificationsTotal counts per-contact sends by outcome status.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifeline_notifications_total",
		Help: "Number of notification sends by delivery status.",
	}, []string{"status"})
)

// Handler exposes the Prometheus scrape endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
