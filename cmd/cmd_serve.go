// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/dialaddr/api"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the address validation HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if logger.GetLevel() > zerolog.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		server := api.NewServer(api.Options{
			Validator:   a.checker,
			Suggester:   a.validator,
			Journal:     a.repo,
			Metrics:     a.metrics,
			Gatherer:    a.registry,
			MaxAttempts: a.cfg.MaxAttempts,
			Logger:      &logger,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Run(ctx, a.cfg.Listen)
	},
}

func init() {
	serveCmd.Flags().String("listen", "localhost:8080", "Address to listen on")

	if err := settings.BindPFlag("listen", serveCmd.Flags().Lookup("listen")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd)
}
