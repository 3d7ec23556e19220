// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"testing"

	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedValidator returns the outcomes in order.
type scriptedValidator struct {
	outcomes []address.Outcome
	seen     []string
}

func (s *scriptedValidator) Validate(_ context.Context, addr string) address.Outcome {
	s.seen = append(s.seen, addr)
	o := s.outcomes[0]
	s.outcomes = s.outcomes[1:]

	return o
}

var (
	validOutcome = address.Outcome{Status: address.StatusValid, FormattedAddress: "123 Main St, Springfield, IL 62701, USA"}
	houseNumber  = address.Outcome{Status: address.StatusInvalid, ErrorMessage: address.MsgMissingHouseNumber}
	notFound     = address.Outcome{Status: address.StatusInvalid, ErrorMessage: address.MsgNotFound}
	down         = address.Outcome{Status: address.StatusServiceUnavailable}
)

func TestSubmitValid(t *testing.T) {
	step := NewAddressStep(&scriptedValidator{outcomes: []address.Outcome{validOutcome}}, 0, nil)

	res := step.Submit(context.Background(), "123 main st springfield")

	assert.True(t, res.Done)
	assert.True(t, res.Verified)
	assert.Equal(t, validOutcome.FormattedAddress, res.Address)
	assert.Empty(t, res.Reprompt)
	assert.Equal(t, 1, res.Attempts)
}

func TestSubmitRetryThenValid(t *testing.T) {
	v := &scriptedValidator{outcomes: []address.Outcome{houseNumber, validOutcome}}
	step := NewAddressStep(v, 3, nil)

	res := step.Submit(context.Background(), "main st springfield")
	require.False(t, res.Done)
	assert.Equal(t, Reprompt(address.MsgMissingHouseNumber), res.Reprompt)
	assert.Contains(t, res.Reprompt, address.MsgMissingHouseNumber)
	assert.Empty(t, res.Address)

	res = step.Submit(context.Background(), "123 main st springfield")
	assert.True(t, res.Done)
	assert.Equal(t, validOutcome.FormattedAddress, res.Address)
	assert.Equal(t, 2, step.Attempts())
}

func TestSubmitServiceUnavailableKeepsRawInput(t *testing.T) {
	step := NewAddressStep(&scriptedValidator{outcomes: []address.Outcome{down}}, 3, nil)

	res := step.Submit(context.Background(), "  742 Evergreen Terrace ")

	assert.True(t, res.Done)
	assert.True(t, res.Degraded)
	assert.False(t, res.Verified)
	assert.Equal(t, "  742 Evergreen Terrace ", res.Address)
	assert.Empty(t, res.Reprompt)
}

func TestSubmitEscalatesAfterMaxAttempts(t *testing.T) {
	v := &scriptedValidator{outcomes: []address.Outcome{notFound, notFound}}
	step := NewAddressStep(v, 2, nil)

	res := step.Submit(context.Background(), "nowhere")
	require.False(t, res.Done)

	res = step.Submit(context.Background(), "still nowhere")
	assert.True(t, res.Done)
	assert.True(t, res.Escalated)
	assert.False(t, res.Verified)
	assert.Equal(t, "still nowhere", res.Address)
}

func TestSubmitAfterDoneIsIgnored(t *testing.T) {
	v := &scriptedValidator{outcomes: []address.Outcome{validOutcome}}
	step := NewAddressStep(v, 3, nil)

	first := step.Submit(context.Background(), "123 main st")
	again := step.Submit(context.Background(), "something else")

	assert.Equal(t, first, again)
	assert.Len(t, v.seen, 1)

	last, ok := step.Result()
	assert.True(t, ok)
	assert.Equal(t, first, last)
}

func TestResultBeforeSubmit(t *testing.T) {
	_, ok := NewAddressStep(&scriptedValidator{}, 3, nil).Result()
	assert.False(t, ok)
}

// unformattedGeocoder answers with a precise, complete match that lacks its
// formatted address.
type unformattedGeocoder struct{}

func (unformattedGeocoder) Geocode(_ context.Context, _ string) ([]geocode.Result, error) {
	return []geocode.Result{{
		AddressComponents: []geocode.Component{
			{LongName: "123", ShortName: "123", Types: []string{geocode.TypeStreetNumber}},
			{LongName: "Main St", ShortName: "Main St", Types: []string{geocode.TypeRoute}},
			{LongName: "Springfield", ShortName: "Springfield", Types: []string{geocode.TypeLocality}},
		},
		Geometry: geocode.Geometry{LocationType: geocode.LocationRooftop},
	}}, nil
}

func (unformattedGeocoder) Autocomplete(_ context.Context, _ string) ([]geocode.Prediction, error) {
	return nil, nil
}

func TestSubmitKeepsRawInputWhenFormattedAddressMissing(t *testing.T) {
	step := NewAddressStep(address.NewValidator(unformattedGeocoder{}, nil), 3, nil)

	res := step.Submit(context.Background(), "123 main st springfield")

	assert.True(t, res.Done)
	assert.False(t, res.Verified)
	assert.True(t, res.Degraded)
	assert.Equal(t, "123 main st springfield", res.Address)
	assert.Equal(t, address.StatusServiceUnavailable, res.Outcome.Status)
}
