// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/config"
	"github.com/jcodagnone/dialaddr/flow"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// settings holds every configuration source. Flags are bound in init.
var settings = config.New()

var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "dialaddr",
	Short: "validate spoken postal addresses",
	Long: `
dialaddr checks the addresses callers dictate to a phone bot against the Google
Maps Geocoding API. Each address is accepted with its canonical form, rejected
with a reason the bot can read back, or kept as typed when the service cannot
be reached.

The API key is read from GOOGLE_MAPS_API_KEY. Every other setting can be given
as a flag or as a DIALADDR_<SETTING> environment variable.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), settings.GetString("log_level"))
		if err != nil {
			return err
		}

		logger = l
		log.Logger = l

		return nil
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newLogger writes human readable logs to terminals and JSON everywhere else.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"timeout":         "timeout",
	"max-attempts":    "max_attempts",
	"max-suggestions": "max_suggestions",
	"h3-resolution":   "h3_resolution",
	"region":          "region",
	"language":        "language",
	"db-path":         "db_path",
	"journal":         "journal",
	"log-level":       "log_level",
	"adc":             "adc",
	"adc-project":     "adc_project",
	"trace-http":      "trace_http",
	"trace-http-body": "trace_http_body",
}

func init() {
	f := rootCmd.PersistentFlags()

	f.Duration("timeout", address.DefaultTimeout, "Maximum time to wait for the geocoding service")
	f.Int("max-attempts", flow.DefaultMaxAttempts, "Rejected addresses tolerated before keeping the raw input")
	f.Int("max-suggestions", address.DefaultMaxSuggestions, "Maximum number of autocomplete suggestions")
	f.Int("h3-resolution", address.DefaultH3Resolution, "H3 resolution (1-15) of the cell attached to valid addresses, -1 disables it")
	f.String("region", "", "Bias results to a region code, e.g. us")
	f.String("language", "", "Language of the formatted addresses, e.g. en")
	f.String("db-path", "db", "Directory holding the validation journal")
	f.Bool("journal", false, "Record every validation outcome in the journal")
	f.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	f.Bool("adc", false, "Look up the API key with Application Default Credentials when missing")
	f.String("adc-project", "", "Project to search for the API key, defaults to the credentials project")
	f.Bool("trace-http", false, "Dump HTTP requests and responses headers to stderr")
	f.Bool("trace-http-body", false, "Dump HTTP requests and responses bodies to stderr")

	for name, key := range flagKeys {
		if err := settings.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// defaultTimeout is how long a command waits for the ADC key lookup.
const defaultTimeout = 30 * time.Second
