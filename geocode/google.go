// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/dialaddr/utils/httputils"
)

// DefaultBaseURL is the root of the Google Maps web services.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// GoogleMapsGeocoder uses the Google Maps Geocoding and Places Autocomplete APIs.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	region     string
	language   string
	httpClient *http.Client
}

// GoogleOptions tweaks a GoogleMapsGeocoder.
type GoogleOptions struct {
	// BaseURL overrides DefaultBaseURL, mostly for tests.
	BaseURL string

	// Region biases results to a ccTLD, e.g. "us".
	Region string

	// Language of the formatted addresses, e.g. "en".
	Language string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(apiKey string, options *GoogleOptions) *GoogleMapsGeocoder {
	if options == nil {
		options = &GoogleOptions{}
	}

	baseURL := strings.TrimSuffix(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var transport http.RoundTripper = http.DefaultTransport
	if options.Transport != nil {
		transport = options.Transport
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		httpLogWriter = os.Stderr
	}

	transport = &httputils.LoggingRoundTripper{
		Transport:    transport,
		Writer:       httpLogWriter,
		DumpBody:     options.EnableHTTPBodyTrace,
		RedactParams: []string{"key"},
	}

	if options.UserAgent != "" {
		transport = &httputils.AppendRequestHeadersRoundTripper{
			Transport: transport,
			Headers:   map[string]string{"User-Agent": options.UserAgent},
		}
	}

	return &GoogleMapsGeocoder{
		apiKey:   apiKey,
		baseURL:  baseURL,
		region:   options.Region,
		language: options.Language,
		httpClient: &http.Client{
			// Callers bound each call with a context; this only guards
			// against contexts without deadline.
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

type googleMapsResponse struct {
	Results      []Result `json:"results"`
	Status       string   `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string   `json:"error_message"`
}

type googleAutocompleteResponse struct {
	Predictions  []Prediction `json:"predictions"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

// Geocode implements Geocoder.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, address string) ([]Result, error) {
	params := url.Values{}
	params.Set("address", address)

	var gmResp googleMapsResponse
	if err := g.get(ctx, "/geocode/json", params, &gmResp); err != nil {
		return nil, err
	}

	switch gmResp.Status {
	case "OK":
		return gmResp.Results, nil
	case "ZERO_RESULTS":
		return []Result{}, nil
	default:
		return nil, ClassifyAPIStatus(gmResp.Status, gmResp.ErrorMessage)
	}
}

// Autocomplete implements Geocoder using Places Autocomplete restricted to
// street addresses.
func (g *GoogleMapsGeocoder) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("types", "address")

	var acResp googleAutocompleteResponse
	if err := g.get(ctx, "/place/autocomplete/json", params, &acResp); err != nil {
		return nil, err
	}

	switch acResp.Status {
	case "OK":
		return acResp.Predictions, nil
	case "ZERO_RESULTS":
		return []Prediction{}, nil
	default:
		return nil, ClassifyAPIStatus(acResp.Status, acResp.ErrorMessage)
	}
}

func (g *GoogleMapsGeocoder) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", g.apiKey)

	if g.region != "" {
		params.Set("region", g.region)
	}

	if g.language != "" {
		params.Set("language", g.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL, key included.
		return ClassifyError(fmt.Errorf("geocoding request failed: %w", stripURL(err)))
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return ClassifyHTTPError(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return ClassifyError(ctx.Err())
		}

		return &GeocodingError{Type: ErrorTypeMalformed, Message: "decoding response", Err: err}
	}

	return nil
}

func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: httputils.RedactQuery(mustParse(urlErr.URL), []string{"key"}), Err: urlErr.Err}
	}

	return err
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}

	return u
}
