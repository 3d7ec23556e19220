// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package address validates caller supplied postal addresses against a
// geocoding provider.
//
// Validation never fails: every call resolves to an Outcome. When the
// provider cannot be consulted the outcome is StatusServiceUnavailable and
// callers are expected to keep the address as typed.
package address

import (
	"context"
	"strings"
	"time"

	"github.com/jcodagnone/dialaddr/geocode"
	"github.com/jcodagnone/dialaddr/metrics"
	"github.com/jcodagnone/dialaddr/utils/textutils"
	"github.com/rs/zerolog"
)

// Defaults used when Options leaves a field unset.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxSuggestions = 5
	DefaultMaxInputLength = 500
	DefaultH3Resolution   = 9
)

// Options configures a Validator.
type Options struct {
	// Timeout bounds each provider call.
	Timeout time.Duration

	// MaxSuggestions caps the list returned by Suggestions.
	MaxSuggestions int

	// MaxInputLength truncates input, in runes, before it is sent out.
	MaxInputLength int

	// H3Resolution of the cell attached to valid outcomes, 1 to 15. Zero
	// means DefaultH3Resolution and negative disables it.
	H3Resolution int

	Logger  *zerolog.Logger
	Metrics *metrics.Metrics
}

// Validator classifies addresses. It is safe for concurrent use and keeps no
// state between calls.
type Validator struct {
	geocoder       geocode.Geocoder
	timeout        time.Duration
	maxSuggestions int
	maxInputLength int
	h3Resolution   int
	logger         *zerolog.Logger
	metrics        *metrics.Metrics
}

// NewValidator creates a Validator on top of a geocoder. The geocoder holds
// the provider credential.
func NewValidator(geocoder geocode.Geocoder, opts *Options) *Validator {
	if opts == nil {
		opts = &Options{}
	}

	v := &Validator{
		geocoder:       geocoder,
		timeout:        opts.Timeout,
		maxSuggestions: opts.MaxSuggestions,
		maxInputLength: opts.MaxInputLength,
		h3Resolution:   opts.H3Resolution,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}

	if v.timeout <= 0 {
		v.timeout = DefaultTimeout
	}

	if v.maxSuggestions <= 0 {
		v.maxSuggestions = DefaultMaxSuggestions
	}

	if v.maxInputLength <= 0 {
		v.maxInputLength = DefaultMaxInputLength
	}

	if v.h3Resolution == 0 {
		v.h3Resolution = DefaultH3Resolution
	}

	if v.logger == nil {
		nop := zerolog.Nop()
		v.logger = &nop
	}

	return v
}

// Validate looks the address up and classifies the best match.
func (v *Validator) Validate(ctx context.Context, address string) Outcome {
	query := textutils.Sanitize(address, v.maxInputLength)
	if query == "" {
		return v.observe(invalid(MsgIncomplete))
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()
	results, err := v.geocoder.Geocode(ctx, query)

	if err != nil {
		geoErr := geocode.ClassifyError(err)
		v.metrics.ObserveGeocode("geocode", time.Since(start), geoErr.Type.String())
		v.logger.Warn().
			Err(err).
			Str("error_type", geoErr.Type.String()).
			Dur("elapsed", time.Since(start)).
			Msg("address validation unavailable, accepting input as typed")

		return v.observe(unavailable())
	}

	v.metrics.ObserveGeocode("geocode", time.Since(start), "")

	if len(results) > 0 && !hasFormattedAddress(results[0]) {
		v.logger.Warn().
			Str("error_type", geocode.ErrorTypeMalformed.String()).
			Str("place_id", results[0].PlaceID).
			Msg("best candidate has no formatted address, accepting input as typed")

		return v.observe(unavailable())
	}

	outcome := Classify(results)
	if outcome.Details != nil && v.h3Resolution > 0 {
		if cell, err := outcome.Details.Location.Cell(v.h3Resolution); err == nil {
			outcome.Details.H3Cell = cell
		} else {
			v.logger.Debug().Err(err).Msg("skipping h3 cell")
		}
	}

	v.logger.Debug().
		Str("status", string(outcome.Status)).
		Int("candidates", len(results)).
		Msg("address validated")

	return v.observe(outcome)
}

func (v *Validator) observe(o Outcome) Outcome {
	v.metrics.ObserveValidation(string(o.Status))

	return o
}

// Classify turns geocoding candidates into an Outcome. Only the first
// candidate is considered; checks run in order and the first failure wins.
// A first candidate without formatted address is a malformed answer and
// yields StatusServiceUnavailable.
func Classify(results []geocode.Result) Outcome {
	if len(results) == 0 {
		return invalid(MsgNotFound)
	}

	best := results[0]
	if !hasFormattedAddress(best) {
		return unavailable()
	}

	if !best.Has(geocode.TypeRoute) || !best.Has(geocode.TypeLocality, geocode.TypeAdminArea1) {
		return invalid(MsgIncomplete)
	}

	if !best.Geometry.LocationType.IsPrecise() {
		return invalid(MsgIncomplete)
	}

	if !best.Has(geocode.TypeStreetNumber) {
		return invalid(MsgMissingHouseNumber)
	}

	return valid(best.FormattedAddress, &Details{
		Address:      ParseAddress(best),
		Location:     best.Geometry.Location,
		LocationType: best.Geometry.LocationType,
		PlaceID:      best.PlaceID,
	})
}

func hasFormattedAddress(r geocode.Result) bool {
	return strings.TrimSpace(r.FormattedAddress) != ""
}

// Suggestions returns up to MaxSuggestions completions for a partial
// address. Any failure yields an empty list.
func (v *Validator) Suggestions(ctx context.Context, partial string) []string {
	query := textutils.Sanitize(partial, v.maxInputLength)
	if query == "" {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()

	predictions, err := v.geocoder.Autocomplete(ctx, query)
	if err != nil {
		geoErr := geocode.ClassifyError(err)
		v.metrics.ObserveGeocode("autocomplete", time.Since(start), geoErr.Type.String())
		v.logger.Warn().Err(err).Str("error_type", geoErr.Type.String()).Msg("address suggestions unavailable")

		return []string{}
	}

	v.metrics.ObserveGeocode("autocomplete", time.Since(start), "")

	out := make([]string, 0, min(len(predictions), v.maxSuggestions))

	for _, p := range predictions {
		if len(out) == v.maxSuggestions {
			break
		}

		if p.Description != "" {
			out = append(out, p.Description)
		}
	}

	return out
}
