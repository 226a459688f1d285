// Package session carries the per-invocation context threaded through the
// call chain instead of process-global singletons: one Session is created per
// CLI run and torn down at exit.
package session

import (
	"time"

	"github.com/google/uuid"

	"docwatch/internal/ai"
	"docwatch/internal/scanner"
)

type Session struct {
	ID        string
	StartedAt time.Time
	Registry  *scanner.Registry
	Responses *ai.ResponseCache
}

func New(registry *scanner.Registry) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Registry:  registry,
		Responses: ai.NewResponseCache(),
	}
}
