// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"strings"

	"github.com/jcodagnone/dialaddr/geocode"
)

// Address is a structured postal address.
type Address struct {
	StreetNumber string `json:"street_number,omitempty"`
	Route        string `json:"route,omitempty"`
	Locality     string `json:"locality,omitempty"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

// ParseAddress extracts the components of a geocoding result. Country is
// kept as its short (ISO 3166) code.
func ParseAddress(r geocode.Result) Address {
	long := func(typ string) string {
		c, _ := r.Find(typ)

		return c.LongName
	}

	country, _ := r.Find(geocode.TypeCountry)

	return Address{
		StreetNumber: long(geocode.TypeStreetNumber),
		Route:        long(geocode.TypeRoute),
		Locality:     long(geocode.TypeLocality),
		Region:       long(geocode.TypeAdminArea1),
		PostalCode:   long(geocode.TypePostalCode),
		Country:      country.ShortName,
	}
}

// FormatForSpeech renders an address as a single sentence a voice bot can
// read out: "<number> <route>, <locality>, <region> <postal code>."
// Missing parts are skipped. The country is never spoken.
func FormatForSpeech(a Address) string {
	parts := make([]string, 0, 3)

	for _, p := range []string{
		joinNonEmpty(" ", a.StreetNumber, a.Route),
		strings.TrimSpace(a.Locality),
		joinNonEmpty(" ", a.Region, a.PostalCode),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, ", ") + "."
}

func joinNonEmpty(sep string, values ...string) string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return strings.Join(out, sep)
}
