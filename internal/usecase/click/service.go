package click

import (
	"context"
	"fmt"
	"time"

	domainClick "workrank/internal/domain/click"

	"github.com/google/uuid"
)

// Repository stores click events.
type Repository interface {
	Insert(ctx context.Context, event *domainClick.Event) error
}

// Observer is notified after a click is persisted.
type Observer interface {
	ClickRecorded(linkType string)
}

// Service records click events.
type Service struct {
	clicks   Repository
	observer Observer
	now      func() time.Time
}

// NewService builds a click service. observer may be nil.
func NewService(clicks Repository, observer Observer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		clicks:   clicks,
		observer: observer,
		now:      now,
	}
}

// Record validates and appends one click event. Events with a missing
// required field fail with click.ErrMissingFields; everything else is
// recorded as-is, including clicks without a work reference.
func (s *Service) Record(ctx context.Context, event *domainClick.Event) error {
	if s.clicks == nil {
		return fmt.Errorf("click service not initialized")
	}
	if event == nil {
		return domainClick.ErrMissingFields
	}
	if err := event.Validate(); err != nil {
		return err
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	if err := s.clicks.Insert(ctx, event); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	if s.observer != nil {
		s.observer.ClickRecorded(event.LinkType)
	}
	return nil
}
