// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode talks to geocoding providers and exposes their answers as
// plain Go values.
package geocode

import (
	"context"
	"slices"

	"github.com/jcodagnone/dialaddr/spatial"
)

// LocationType describes how precisely a result locates the query.
type LocationType string

// Location types reported by Google Maps.
const (
	LocationRooftop           LocationType = "ROOFTOP"
	LocationRangeInterpolated LocationType = "RANGE_INTERPOLATED"
	LocationGeometricCenter   LocationType = "GEOMETRIC_CENTER"
	LocationApproximate       LocationType = "APPROXIMATE"
)

// IsPrecise reports whether the result points at a building or an
// interpolated position along a street.
func (t LocationType) IsPrecise() bool {
	return t == LocationRooftop || t == LocationRangeInterpolated
}

// Component types the validator cares about.
const (
	TypeStreetNumber = "street_number"
	TypeRoute        = "route"
	TypeLocality     = "locality"
	TypeAdminArea1   = "administrative_area_level_1"
	TypePostalCode   = "postal_code"
	TypeCountry      = "country"
)

// Component is one piece of a structured address.
type Component struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Is reports whether the component carries the given type.
func (c Component) Is(typ string) bool {
	return slices.Contains(c.Types, typ)
}

// Geometry holds the position of a result.
type Geometry struct {
	Location     spatial.Point `json:"location"`
	LocationType LocationType  `json:"location_type"`
}

// Result is a geocoding candidate. Providers return them best first.
type Result struct {
	AddressComponents []Component `json:"address_components"`
	FormattedAddress  string      `json:"formatted_address"`
	Geometry          Geometry    `json:"geometry"`
	PlaceID           string      `json:"place_id"`
	PartialMatch      bool        `json:"partial_match,omitempty"`
}

// Find returns the first component with the given type.
func (r Result) Find(typ string) (Component, bool) {
	for _, c := range r.AddressComponents {
		if c.Is(typ) {
			return c, true
		}
	}

	return Component{}, false
}

// Has reports whether any component carries one of the given types.
func (r Result) Has(types ...string) bool {
	for _, typ := range types {
		if _, ok := r.Find(typ); ok {
			return true
		}
	}

	return false
}

// Prediction is an autocomplete candidate.
type Prediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// Geocoder interface for different geocoding providers.
//
// Geocode returns an empty slice and a nil error when the provider answered
// but found nothing. Any error means the provider could not be consulted.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Result, error)
	Autocomplete(ctx context.Context, input string) ([]Prediction, error)
}
