// Copyright 2025 The DialAddr Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"

	"github.com/uber/h3-go/v4"
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a WKT representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// IsZero reports whether the point was never set.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value any) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	var s string

	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}

	// DuckDB renders geometries with a space after the type name.
	if _, err := fmt.Sscanf(s, "POINT(%f %f)", &p.Lng, &p.Lat); err == nil {
		return nil
	}

	if _, err := fmt.Sscanf(s, "POINT (%f %f)", &p.Lng, &p.Lat); err != nil {
		return fmt.Errorf("spatial: invalid point %q: %w", s, err)
	}

	return nil
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(resolution int) (int64, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), resolution)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", resolution, err)
	}

	return int64(cell), nil
}
