package work

import "time"

// ID identifies a work in the external affiliate catalog.
type ID = int64

// Work is a catalog item synced from the affiliate API.
// The analytics core only reads works; catalog sync owns the write path.
type Work struct {
	ID           ID
	ExternalID   string
	Title        string
	Description  string
	ThumbnailURL string
	AffiliateURL string
	MakerName    string
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
