// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/flow"
)

// ValidateRequest is the body of POST /api/address/validate. Any non empty
// address is classified; long input is truncated by the validator.
type ValidateRequest struct {
	Address string `json:"address" binding:"required"`
}

// ValidateResponse is the outcome plus how the bot would read it back.
type ValidateResponse struct {
	address.Outcome

	Speech string `json:"speech,omitempty"`
}

func (s *Server) validateAddress(ctx *gin.Context) {
	var req ValidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	outcome := s.validator.Validate(ctx.Request.Context(), req.Address)

	ctx.JSON(http.StatusOK, ValidateResponse{Outcome: outcome, Speech: outcome.Speech()})
}

func (s *Server) suggestAddresses(ctx *gin.Context) {
	input := ctx.Query("input")
	if input == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "input query parameter is required"})

		return
	}

	ctx.JSON(http.StatusOK, s.suggester.Suggestions(ctx.Request.Context(), input))
}

func (s *Server) formatSpeech(ctx *gin.Context) {
	var req address.Address
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"speech": address.FormatForSpeech(req)})
}

// CollectRequest is the body of POST /api/address/collect. An empty SessionID
// starts a new conversation.
type CollectRequest struct {
	SessionID string `json:"session_id" binding:"omitempty,uuid"`
	Utterance string `json:"utterance" binding:"required"`
}

// CollectResponse is the step result of the conversation SessionID.
type CollectResponse struct {
	SessionID string `json:"session_id"`
	flow.StepResult
}

func (s *Server) collectAddress(ctx *gin.Context) {
	var req CollectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	var (
		id   uuid.UUID
		sess *session
	)

	if req.SessionID == "" {
		id, sess = s.sessions.create(flow.NewAddressStep(s.validator, s.maxAttempts, s.logger))
	} else {
		id = uuid.MustParse(req.SessionID)

		var ok bool
		if sess, ok = s.sessions.get(id); !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("session %s not found or expired", id)})

			return
		}
	}

	res := sess.submit(ctx.Request.Context(), req.Utterance)
	if res.Done {
		s.sessions.delete(id)
	}

	ctx.JSON(http.StatusOK, CollectResponse{SessionID: id.String(), StepResult: res})
}

func (s *Server) listJournal(ctx *gin.Context) {
	if s.journal == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "journal is disabled"})

		return
	}

	page := 1
	perPage := 50

	if p := ctx.Query("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}

	if pp := ctx.Query("per_page"); pp != "" {
		if _, err := fmt.Sscanf(pp, "%d", &perPage); err != nil || perPage < 1 || perPage > 500 {
			perPage = 50
		}
	}

	var status *address.Status

	if raw := ctx.Query("status"); raw != "" {
		st, ok := address.ParseStatus(raw)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid status parameter"})

			return
		}

		status = &st
	}

	entries, err := s.journal.List(ctx.Request.Context(), status, perPage, (page-1)*perPage)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	total, err := s.journal.Count(ctx.Request.Context(), status)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (s *Server) journalStats(ctx *gin.Context) {
	if s.journal == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "journal is disabled"})

		return
	}

	stats, err := s.journal.Stats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, stats)
}
