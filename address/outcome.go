// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"github.com/jcodagnone/dialaddr/geocode"
	"github.com/jcodagnone/dialaddr/spatial"
)

// Status is the classification of a validation.
type Status string

const (
	// StatusValid the address was found and is precise enough to use.
	StatusValid Status = "valid"
	// StatusInvalid the address must be asked for again.
	StatusInvalid Status = "invalid"
	// StatusServiceUnavailable the provider could not be consulted. Callers
	// accept the raw input.
	StatusServiceUnavailable Status = "service_unavailable"
)

// Messages shown to callers when an address is rejected.
const (
	MsgNotFound           = "Address not found. Please provide a more specific address."
	MsgIncomplete         = "Please provide a complete address with street, city, and state."
	MsgMissingHouseNumber = "The address seems incomplete. Please provide the full street address including house number."
)

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusValid, StatusInvalid, StatusServiceUnavailable:
		return st, true
	default:
		return "", false
	}
}

// Details carries the structured data behind a valid outcome.
type Details struct {
	Address      Address              `json:"address"`
	Location     spatial.Point        `json:"location"`
	LocationType geocode.LocationType `json:"location_type"`
	PlaceID      string               `json:"place_id,omitempty"`
	H3Cell       int64                `json:"h3_cell,omitempty"`
}

// Outcome is the result of validating one address.
//
// FormattedAddress and Details are only set when Status is StatusValid,
// ErrorMessage only when it is StatusInvalid. A StatusServiceUnavailable
// outcome carries neither.
type Outcome struct {
	Status           Status   `json:"status"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	ErrorMessage     string   `json:"error_message,omitempty"`
	Details          *Details `json:"details,omitempty"`
}

func valid(formatted string, details *Details) Outcome {
	return Outcome{Status: StatusValid, FormattedAddress: formatted, Details: details}
}

func invalid(message string) Outcome {
	return Outcome{Status: StatusInvalid, ErrorMessage: message}
}

func unavailable() Outcome {
	return Outcome{Status: StatusServiceUnavailable}
}

// Accepted returns the address a caller should keep for this outcome given
// what the user typed: the canonical form when valid, the raw input when the
// service was unavailable, and "" when the address was rejected.
func (o Outcome) Accepted(raw string) string {
	switch o.Status {
	case StatusValid:
		return o.FormattedAddress
	case StatusServiceUnavailable:
		return raw
	default:
		return ""
	}
}

// Speech renders a valid outcome as a sentence. It returns "" otherwise.
func (o Outcome) Speech() string {
	if o.Status != StatusValid || o.Details == nil {
		return ""
	}

	return FormatForSpeech(o.Details.Address)
}
