// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"

	"github.com/jcodagnone/dialaddr/address"
	"github.com/rs/zerolog"
)

// Validator classifies one address.
type Validator interface {
	Validate(ctx context.Context, address string) address.Outcome
}

// RecordingValidator journals every outcome of the wrapped validator.
// Journal failures are logged and never change the outcome.
type RecordingValidator struct {
	next   Validator
	repo   Repository
	logger *zerolog.Logger
}

// NewRecordingValidator wraps next so its outcomes land in repo.
func NewRecordingValidator(next Validator, repo Repository, logger *zerolog.Logger) *RecordingValidator {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &RecordingValidator{next: next, repo: repo, logger: logger}
}

// Validate implements Validator.
func (r *RecordingValidator) Validate(ctx context.Context, addr string) address.Outcome {
	outcome := r.next.Validate(ctx, addr)

	// The caller's deadline may already be spent on the lookup.
	entry := NewEntry(addr, outcome)
	if err := r.repo.Record(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error().Err(err).Str("id", entry.ID.String()).Msg("journaling validation")
	}

	return outcome
}
