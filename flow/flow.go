// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

// Package flow drives the "collect address" step of a conversation.
//
// The step owns retry counting. The validator it consumes only classifies.
package flow

import (
	"context"

	"github.com/jcodagnone/dialaddr/address"
	"github.com/rs/zerolog"
)

// DefaultMaxAttempts is the number of rejected addresses tolerated before the
// step gives up validating.
const DefaultMaxAttempts = 3

// InitialPrompt asks the caller for an address.
const InitialPrompt = "Please tell me your full address, including street number, street name, city, state, and zip code."

// Validator classifies one address.
type Validator interface {
	Validate(ctx context.Context, address string) address.Outcome
}

// StepResult is what the conversation does after one utterance.
type StepResult struct {
	// Done is set once an address has been stored.
	Done bool `json:"done"`

	// Address to store. Set when Done.
	Address string `json:"address,omitempty"`

	// Verified is set when Address is the canonical form from the provider.
	Verified bool `json:"verified"`

	// Degraded is set when the provider was down and the raw input was kept.
	// Never surfaced to the user.
	Degraded bool `json:"-"`

	// Escalated is set when the attempts ran out and the raw input was kept.
	Escalated bool `json:"escalated,omitempty"`

	// Reprompt is what the bot says next when not Done.
	Reprompt string `json:"reprompt,omitempty"`

	// Attempts counts utterances processed so far.
	Attempts int `json:"attempts"`

	Outcome address.Outcome `json:"outcome"`
}

// AddressStep collects one address. It is not safe for concurrent use; each
// conversation owns its own step.
type AddressStep struct {
	validator   Validator
	maxAttempts int
	logger      *zerolog.Logger
	attempts    int
	last        *StepResult
}

// NewAddressStep creates a step. maxAttempts <= 0 means DefaultMaxAttempts.
func NewAddressStep(v Validator, maxAttempts int, logger *zerolog.Logger) *AddressStep {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &AddressStep{validator: v, maxAttempts: maxAttempts, logger: logger}
}

// Reprompt builds the retry prompt for a rejected address.
func Reprompt(message string) string {
	return "The address provided could not be validated. " + message +
		" Please provide your complete address again, including street number, street name, city, state, and zip code."
}

// Submit processes one utterance holding a candidate address. Once the step
// is done further utterances are ignored and the stored result is returned.
func (s *AddressStep) Submit(ctx context.Context, utterance string) StepResult {
	if s.last != nil && s.last.Done {
		return *s.last
	}

	s.attempts++

	outcome := s.validator.Validate(ctx, utterance)
	res := StepResult{Attempts: s.attempts, Outcome: outcome}

	switch outcome.Status {
	case address.StatusValid:
		res.Done = true
		res.Verified = true
		res.Address = outcome.Accepted(utterance)

		s.logger.Info().Int("attempts", s.attempts).Msg("address collected")

	case address.StatusServiceUnavailable:
		res.Done = true
		res.Degraded = true
		res.Address = outcome.Accepted(utterance)

		s.logger.Warn().Int("attempts", s.attempts).Msg("address validation unavailable, storing raw address")

	default:
		if s.attempts >= s.maxAttempts {
			res.Done = true
			res.Escalated = true
			res.Address = utterance

			s.logger.Warn().Int("attempts", s.attempts).Msg("address attempts exhausted, storing raw address")

			break
		}

		res.Reprompt = Reprompt(outcome.ErrorMessage)

		s.logger.Info().
			Int("attempts", s.attempts).
			Str("reason", outcome.ErrorMessage).
			Msg("address rejected, asking again")
	}

	s.last = &res

	return res
}

// Attempts returns how many utterances were processed.
func (s *AddressStep) Attempts() int {
	return s.attempts
}

// Result returns the last StepResult, if any.
func (s *AddressStep) Result() (StepResult, bool) {
	if s.last == nil {
		return StepResult{}, false
	}

	return *s.last, true
}
