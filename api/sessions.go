// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/dialaddr/flow"
)

const defaultSessionTTL = 30 * time.Minute

// session serializes the utterances of one conversation.
type session struct {
	mu       sync.Mutex
	step     *flow.AddressStep
	lastSeen time.Time
}

func (s *session) submit(ctx context.Context, utterance string) flow.StepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.step.Submit(ctx, utterance)
}

// sessionStore holds in-flight address collections.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uuid.UUID]*session
	now      func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*session),
		now:      time.Now,
	}
}

func (st *sessionStore) create(step *flow.AddressStep) (uuid.UUID, *session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.expireLocked()

	id := uuid.New()
	sess := &session{step: step, lastSeen: st.now()}
	st.sessions[id] = sess

	return id, sess
}

func (st *sessionStore) get(id uuid.UUID) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.expireLocked()

	sess, ok := st.sessions[id]
	if ok {
		sess.lastSeen = st.now()
	}

	return sess, ok
}

func (st *sessionStore) delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, id)
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

func (st *sessionStore) expireLocked() {
	cutoff := st.now().Add(-st.ttl)

	for id, sess := range st.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
		}
	}
}
