package click

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"workrank/internal/domain/work"
)

// ID identifies a click event.
type ID = uuid.UUID

// ErrMissingFields is returned when a required attribute is absent.
// The message is part of the click API contract and is surfaced
// verbatim to the frontend.
var ErrMissingFields = errors.New("Missing required fields")

// Well-known page types originating clicks. The set is open; new page
// types may appear without a schema change.
const (
	PageTypeHome     = "home"
	PageTypeWork     = "work_detail"
	PageTypeWorkCard = "work_card"
	PageTypeRanking  = "ranking"
	PageTypeArticle  = "article"
)

// Well-known link types.
const (
	LinkTypeAffiliate = "affiliate"
	LinkTypeSample    = "sample"
	LinkTypeExternal  = "external"
)

// Event is an immutable click fact. Rows are inserted once and never
// updated or deleted by the application.
type Event struct {
	ID          ID
	PageType    string
	PageID      *int64
	LinkType    string
	Destination string
	WorkID      *work.ID
	UserAgent   string
	Referer     string
	CreatedAt   time.Time
}

// Validate checks required attributes before insertion.
func (e *Event) Validate() error {
	if e.PageType == "" || e.LinkType == "" || e.Destination == "" {
		return ErrMissingFields
	}
	return nil
}
