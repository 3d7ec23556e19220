// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/config"
	"github.com/jcodagnone/dialaddr/flow"
	"github.com/jcodagnone/dialaddr/geocode"
	"github.com/jcodagnone/dialaddr/journal"
	"github.com/jcodagnone/dialaddr/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const journalFile = "dialaddr.duckdb"

// app is what every command needs, built once from the configuration.
type app struct {
	cfg       *config.Config
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	validator *address.Validator

	// checker is validator, journaled when the journal is enabled.
	checker flow.Validator

	db   *sql.DB
	repo journal.Repository
}

func newApp(ctx context.Context) (*app, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cfg, err := config.Load(ctx, settings, config.FindAPIKeyWithADC)
	if err != nil {
		return nil, err
	}

	logger.Debug().Stringer("config", cfg).Msg("configuration loaded")

	geocoder := geocode.NewGoogleMapsGeocoder(cfg.APIKey, &geocode.GoogleOptions{
		Region:              cfg.Region,
		Language:            cfg.Language,
		UserAgent:           "dialaddr/" + Version,
		EnableHTTPTrace:     cfg.TraceHTTP,
		EnableHTTPBodyTrace: cfg.TraceHTTPBody,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := metrics.NewMetrics(registry)

	a := &app{
		cfg:      cfg,
		registry: registry,
		metrics:  m,
		validator: address.NewValidator(geocoder, &address.Options{
			Timeout:        cfg.Timeout,
			MaxSuggestions: cfg.MaxSuggestions,
			H3Resolution:   cfg.H3Resolution,
			Logger:         &logger,
			Metrics:        m,
		}),
	}
	a.checker = a.validator

	if cfg.Journal {
		if err := a.openJournal(); err != nil {
			return nil, err
		}

		a.checker = journal.NewRecordingValidator(a.validator, a.repo, &logger)
	}

	return a, nil
}

func (a *app) openJournal() error {
	db, repo, err := openJournal(a.cfg.DbPath, true)
	if err != nil {
		return err
	}

	a.db = db
	a.repo = repo

	return nil
}

// openJournal opens the journal under dbPath. When create is false a missing
// database is an error.
func openJournal(dbPath string, create bool) (*sql.DB, journal.Repository, error) {
	dbpath := filepath.Join(dbPath, journalFile)

	if create {
		if err := os.MkdirAll(dbPath, 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating db directory: %w", err)
		}
	} else if _, err := os.Stat(dbpath); errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("journal not found at %s - run a command with --journal first", dbpath)
	}

	db, err := sql.Open("duckdb", dbpath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := journal.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return db, repo, nil
}

func (a *app) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
