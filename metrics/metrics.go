// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus collectors exported by dialaddr.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dialaddr"

// Metrics holds Prometheus metrics collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	validationsTotal *prometheus.CounterVec
	geocodeDuration  *prometheus.HistogramVec
	geocodeErrors    *prometheus.CounterVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them in reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Address validations by outcome",
			},
			[]string{"status"},
		),
		geocodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "geocode_duration_seconds",
				Help:      "Latency of geocoding provider calls",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		geocodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geocode_errors_total",
				Help:      "Geocoding provider failures by type",
			},
			[]string{"operation", "type"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.validationsTotal,
		m.geocodeDuration,
		m.geocodeErrors,
		m.requestsTotal,
		m.requestDuration,
	)

	return m
}

// ObserveValidation counts one validation outcome.
func (m *Metrics) ObserveValidation(status string) {
	if m == nil {
		return
	}

	m.validationsTotal.WithLabelValues(status).Inc()
}

// ObserveGeocode records a provider call. errType is empty on success.
func (m *Metrics) ObserveGeocode(operation string, d time.Duration, errType string) {
	if m == nil {
		return
	}

	m.geocodeDuration.WithLabelValues(operation).Observe(d.Seconds())

	if errType != "" {
		m.geocodeErrors.WithLabelValues(operation, errType).Inc()
	}
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()

			return
		}

		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.requestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
