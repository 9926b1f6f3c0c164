package usage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for usage events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records which organizations touch which artifacts. Callers treat
// recording as best-effort: a usage failure is logged, never propagated into
// the store path.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("usage: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("usage: repository not configured")
	}
	if e.Organization == "" {
		return ErrInvalidEvent
	}
	if e.Op == "" {
		return ErrInvalidEvent
	}
	if e.Path == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// RecordRead records an artifact download.
func (s *Service) RecordRead(ctx context.Context, organization, actorEmail, path string, bytes int64) error {
	return s.Append(ctx, Event{
		Organization: organization,
		Op:           OpRead,
		Path:         path,
		Bytes:        bytes,
		ActorEmail:   actorEmail,
	})
}

// RecordWrite records an artifact upload.
func (s *Service) RecordWrite(ctx context.Context, organization, actorEmail, path string, bytes int64) error {
	return s.Append(ctx, Event{
		Organization: organization,
		Op:           OpWrite,
		Path:         path,
		Bytes:        bytes,
		ActorEmail:   actorEmail,
	})
}

// RecordExists records an existence probe.
func (s *Service) RecordExists(ctx context.Context, organization, actorEmail, path string) error {
	return s.Append(ctx, Event{
		Organization: organization,
		Op:           OpExists,
		Path:         path,
		ActorEmail:   actorEmail,
	})
}
