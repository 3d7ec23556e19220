// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sql.DB, Repository) {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.CreateSchema())

	return db, repo
}

var validOutcome = address.Outcome{
	Status:           address.StatusValid,
	FormattedAddress: "123 Main St, Springfield, IL 62701, USA",
	Details: &address.Details{
		Location: spatial.Point{Lat: 39.781721, Lng: -89.650148},
		H3Cell:   617700169958293503,
	},
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	db, repo := setupTestDB(t)

	require.NoError(t, repo.CreateSchema())

	var tableName string

	err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'validations'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "validations", tableName)
}

func TestRecordAndList(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	valid := NewEntry("123 Main St Springfield", validOutcome)
	valid.CreatedAt = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	invalid := NewEntry("Main St", address.Outcome{Status: address.StatusInvalid, ErrorMessage: address.MsgIncomplete})
	invalid.CreatedAt = valid.CreatedAt.Add(time.Minute)

	down := NewEntry("Ñandú 123", address.Outcome{Status: address.StatusServiceUnavailable})
	down.CreatedAt = valid.CreatedAt.Add(2 * time.Minute)

	for _, e := range []*Entry{valid, invalid, down} {
		require.NoError(t, repo.Record(ctx, e))
	}

	entries, err := repo.List(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, down.ID, entries[0].ID)
	assert.Equal(t, "nandu 123", entries[0].NormalizedQuery)
	assert.Nil(t, entries[0].Point)
	assert.Empty(t, entries[0].FormattedAddress)
	assert.Empty(t, entries[0].ErrorMessage)

	assert.Equal(t, address.MsgIncomplete, entries[1].ErrorMessage)

	got := entries[2]
	assert.Equal(t, valid.ID, got.ID)
	assert.Equal(t, address.StatusValid, got.Status)
	assert.Equal(t, validOutcome.FormattedAddress, got.FormattedAddress)
	require.NotNil(t, got.Point)
	assert.InDelta(t, 39.781721, got.Point.Lat, 1e-6)
	assert.InDelta(t, -89.650148, got.Point.Lng, 1e-6)
	assert.Equal(t, int64(617700169958293503), got.H3Cell)
	assert.True(t, valid.CreatedAt.Equal(got.CreatedAt.UTC()))
}

func TestListFilterAndPaging(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		e := NewEntry("somewhere", address.Outcome{Status: address.StatusServiceUnavailable})
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Record(ctx, e))
	}

	require.NoError(t, repo.Record(ctx, NewEntry("123 Main St", validOutcome)))

	st := address.StatusServiceUnavailable

	page, err := repo.List(ctx, &st, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	for _, e := range page {
		assert.Equal(t, address.StatusServiceUnavailable, e.Status)
	}

	n, err := repo.Count(ctx, &st)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestStats(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[address.Status]int{
		address.StatusValid:              0,
		address.StatusInvalid:            0,
		address.StatusServiceUnavailable: 0,
	}, stats)

	require.NoError(t, repo.Record(ctx, NewEntry("a", validOutcome)))
	require.NoError(t, repo.Record(ctx, NewEntry("b", validOutcome)))
	require.NoError(t, repo.Record(ctx, NewEntry("c", address.Outcome{Status: address.StatusServiceUnavailable})))

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats[address.StatusValid])
	assert.Equal(t, 0, stats[address.StatusInvalid])
	assert.Equal(t, 1, stats[address.StatusServiceUnavailable])
}

func TestRecordNil(t *testing.T) {
	_, repo := setupTestDB(t)

	assert.Error(t, repo.Record(context.Background(), nil))
}

type fixedValidator address.Outcome

func (f fixedValidator) Validate(_ context.Context, _ string) address.Outcome {
	return address.Outcome(f)
}

type failingRepository struct {
	Repository
}

func (failingRepository) Record(_ context.Context, _ *Entry) error {
	return errors.New("disk full")
}

func TestRecordingValidator(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	rv := NewRecordingValidator(fixedValidator(validOutcome), repo, nil)

	got := rv.Validate(ctx, "123 Main St")
	assert.Equal(t, validOutcome, got)

	entries, err := repo.List(ctx, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "123 Main St", entries[0].Query)
}

func TestRecordingValidatorIgnoresJournalErrors(t *testing.T) {
	rv := NewRecordingValidator(fixedValidator(validOutcome), failingRepository{}, nil)

	assert.Equal(t, validOutcome, rv.Validate(context.Background(), "123 Main St"))
}
