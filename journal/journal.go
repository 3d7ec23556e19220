// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal keeps an operational log of validation outcomes in DuckDB.
//
// The journal is written after each validation and read by operators. The
// validator never consults it.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/spatial"
	"github.com/jcodagnone/dialaddr/utils/textutils"
)

// Entry is one journaled validation.
type Entry struct {
	ID               uuid.UUID      `json:"id"`
	Query            string         `json:"query"`
	NormalizedQuery  string         `json:"normalized_query"`
	Status           address.Status `json:"status"`
	FormattedAddress string         `json:"formatted_address,omitempty"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	Point            *spatial.Point `json:"point,omitempty"`
	H3Cell           int64          `json:"h3_cell,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// NewEntry builds the journal entry for a validation of query.
func NewEntry(query string, o address.Outcome) *Entry {
	e := &Entry{
		ID:               uuid.New(),
		Query:            query,
		NormalizedQuery:  textutils.LowerASCIIFolding(query),
		Status:           o.Status,
		FormattedAddress: o.FormattedAddress,
		ErrorMessage:     o.ErrorMessage,
		CreatedAt:        time.Now().UTC(),
	}

	if o.Details != nil {
		p := o.Details.Location
		e.Point = &p
		e.H3Cell = o.Details.H3Cell
	}

	return e
}

// Repository handles persistence of journal entries.
type Repository interface {
	// CreateSchema creates the validations table
	CreateSchema() error

	// Record stores an entry
	Record(ctx context.Context, e *Entry) error

	// List returns entries newest first, optionally filtered by status
	List(ctx context.Context, status *address.Status, limit, offset int) ([]*Entry, error)

	// Count returns the number of entries, optionally filtered by status
	Count(ctx context.Context, status *address.Status) (int, error)

	// Stats returns the number of entries per status
	Stats(ctx context.Context) (map[address.Status]int, error)
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a journal repository on top of a DuckDB connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS validations (
			id VARCHAR PRIMARY KEY,
			query VARCHAR NOT NULL,
			normalized_query VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			formatted_address VARCHAR,
			error_message VARCHAR,
			point VARCHAR,
			h3_cell BIGINT,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS validations_normalized_query_idx ON validations(normalized_query);
	`)
	if err != nil {
		return fmt.Errorf("creating validations table: %w", err)
	}

	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func (r *sqlRepository) Record(ctx context.Context, e *Entry) error {
	if e == nil {
		return fmt.Errorf("journal entry can't be nil")
	}

	var point, cell any
	if e.Point != nil {
		point = e.Point.String()
	}

	if e.H3Cell != 0 {
		cell = e.H3Cell
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO validations(
			id,
			query,
			normalized_query,
			status,
			formatted_address,
			error_message,
			point,
			h3_cell,
			created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID.String(),
		e.Query,
		e.NormalizedQuery,
		string(e.Status),
		nullable(e.FormattedAddress),
		nullable(e.ErrorMessage),
		point,
		cell,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording validation: %w", err)
	}

	return nil
}

func whereStatus(status *address.Status) (string, []any) {
	if status == nil {
		return "", nil
	}

	return " WHERE status = ?", []any{string(*status)}
}

func (r *sqlRepository) List(ctx context.Context, status *address.Status, limit, offset int) ([]*Entry, error) {
	where, args := whereStatus(status)

	var query strings.Builder

	query.WriteString(`
		SELECT id, query, normalized_query, status, formatted_address, error_message, point, h3_cell, created_at
		FROM validations`)
	query.WriteString(where)
	query.WriteString(" ORDER BY created_at DESC, id")

	if limit > 0 {
		query.WriteString(" LIMIT ? OFFSET ?")

		args = append(args, limit, max(offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing validations: %w", err)
	}
	defer rows.Close()

	var entries []*Entry

	for rows.Next() {
		var (
			e                   Entry
			id, st              string
			formatted, errorMsg sql.NullString
			point               sql.NullString
			cell                sql.NullInt64
		)

		if err := rows.Scan(&id, &e.Query, &e.NormalizedQuery, &st, &formatted, &errorMsg, &point, &cell, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning validation: %w", err)
		}

		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing validation id %q: %w", id, err)
		}

		e.Status = address.Status(st)
		e.FormattedAddress = formatted.String
		e.ErrorMessage = errorMsg.String
		e.H3Cell = cell.Int64

		if point.Valid {
			var p spatial.Point
			if err := p.Scan(point.String); err != nil {
				return nil, err
			}

			e.Point = &p
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing validations: %w", err)
	}

	return entries, nil
}

func (r *sqlRepository) Count(ctx context.Context, status *address.Status) (int, error) {
	where, args := whereStatus(status)

	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM validations"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting validations: %w", err)
	}

	return n, nil
}

func (r *sqlRepository) Stats(ctx context.Context) (map[address.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM validations
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	defer rows.Close()

	stats := map[address.Status]int{
		address.StatusValid:              0,
		address.StatusInvalid:            0,
		address.StatusServiceUnavailable: 0,
	}

	for rows.Next() {
		var (
			st    string
			count int
		)

		if err := rows.Scan(&st, &count); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}

		stats[address.Status(st)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	return stats, nil
}
