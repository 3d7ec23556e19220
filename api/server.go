// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package api exposes address validation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/dialaddr/flow"
	"github.com/jcodagnone/dialaddr/journal"
	"github.com/jcodagnone/dialaddr/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Suggester completes partial addresses.
type Suggester interface {
	Suggestions(ctx context.Context, partial string) []string
}

// Options wires a Server.
type Options struct {
	Validator   flow.Validator
	Suggester   Suggester
	Journal     journal.Repository // optional
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MaxAttempts int
	SessionTTL  time.Duration
	Logger      *zerolog.Logger
}

// Server serves the HTTP API.
type Server struct {
	validator   flow.Validator
	suggester   Suggester
	journal     journal.Repository
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	maxAttempts int
	sessions    *sessionStore
	logger      *zerolog.Logger
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		validator:   opts.Validator,
		suggester:   opts.Suggester,
		journal:     opts.Journal,
		metrics:     opts.Metrics,
		gatherer:    gatherer,
		maxAttempts: opts.MaxAttempts,
		sessions:    newSessionStore(opts.SessionTTL),
		logger:      logger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.metrics.Middleware())

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	r.POST("/api/address/validate", s.validateAddress)
	r.GET("/api/address/suggest", s.suggestAddresses)
	r.POST("/api/address/speech", s.formatSpeech)
	r.POST("/api/address/collect", s.collectAddress)

	r.GET("/api/journal", s.listJournal)
	r.GET("/api/journal/stats", s.journalStats)

	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", addr).Msg("address validation server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
