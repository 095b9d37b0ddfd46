package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// login attempts labels
const (
	portalStudent = "student"
	portalAdmin   = "admin"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scolarite_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route, method and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method", "status"},
		),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scolarite_login_attempts_total",
				Help: "Login attempts by portal and outcome",
			},
			[]string{"portal", "outcome"},
		),
	}
	m.registry.MustRegister(
		m.requestDuration,
		m.loginAttempts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) loginAttempt(portal string, ok bool) {
	outcome := outcomeFailure
	if ok {
		outcome = outcomeSuccess
	}
	m.loginAttempts.WithLabelValues(portal, outcome).Inc()
}

// middleware observes the duration of every request, labelled with the matched route.
func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		status := ctx.Response().Status
		if err != nil {
			status = http.StatusInternalServerError
			if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
				status = herr.Code
			}
		}
		path := ctx.Path()
		if path == "" {
			path = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(path, ctx.Request().Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
