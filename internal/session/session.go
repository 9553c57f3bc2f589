// Package session stores per-user conversational state.
package session

import (
	"context"

	"github.com/and161185/fittrack/internal/model"
)

// Store keeps one Session per user. Get returns errs.ErrNotFound when none exists.
type Store interface {
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, userID int64) error
}
