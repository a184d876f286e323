// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability exposes Prometheus metrics for the web form.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/csv2shp/pkg/types"
)

// Collector bundles the conversion and HTTP metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Conversions *prometheus.CounterVec
	Durations   prometheus.Histogram
	Points      prometheus.Counter

	HTTPRequests *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against the same registry returns the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	conversions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csv2shp_conversions_total",
		Help: "Conversions run, labeled by outcome.",
	}, []string{"status"}), "csv2shp_conversions_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "csv2shp_conversion_duration_seconds",
		Help:    "Wall time of a conversion in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}), "csv2shp_conversion_duration_seconds")
	if err != nil {
		return nil, err
	}

	points, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "csv2shp_points_total",
		Help: "Points written to delivered shapefiles.",
	}), "csv2shp_points_total")
	if err != nil {
		return nil, err
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csv2shp_http_requests_total",
		Help: "HTTP requests handled, labeled by route, method and status code.",
	}, []string{"route", "method", "code"}), "csv2shp_http_requests_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Conversions:  conversions,
		Durations:    durations,
		Points:       points,
		HTTPRequests: requests,
	}, nil
}

// ObserveConversion records one finished conversion. points is only added
// when the run produced an archive.
func (c *Collector) ObserveConversion(status types.ConversionStatus, elapsed time.Duration, points int) {
	if c == nil {
		return
	}
	c.Conversions.WithLabelValues(string(status)).Inc()
	c.Durations.Observe(elapsed.Seconds())
	if status.Wrote() {
		c.Points.Add(float64(points))
	}
}

// Middleware counts requests per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		if c == nil {
			return
		}
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.HTTPRequests.WithLabelValues(route, ctx.Request.Method, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
