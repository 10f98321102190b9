package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"virtualevents/internal/domain"
)

const namespace = "virtualevents"

// Registry holds every metric exposed on /metrics.
var Registry = prometheus.NewRegistry()

// RegistrationsTotal counts registration attempts by operation (register|unregister) and outcome.
var RegistrationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of event registration attempts",
	},
	[]string{"op", "result"},
)

// NotificationsTotal counts notification deliveries by kind and result (sent|failed|dropped).
var NotificationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications processed by the dispatcher",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth is the number of notifications waiting for a worker.
var NotificationQueueDepth = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of queued notifications",
	},
)

// NotificationSendDuration records how long a single delivery took.
var NotificationSendDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_send_duration_seconds",
		Help:      "Duration of a single notification delivery in seconds",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	},
	[]string{"kind"},
)

// Init registers the Go runtime and process collectors.
func Init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// ObserveRegistration records the outcome of a register or unregister call.
func ObserveRegistration(op string, err error) {
	RegistrationsTotal.WithLabelValues(op, registrationResult(err)).Inc()
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrEventFull):
		return "event_full"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, domain.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}
