package timeutil

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	locationMu sync.RWMutex
	location   = time.UTC
)

// SetLocation sets the default application timezone.
func SetLocation(name string) error {
	tz := strings.TrimSpace(name)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load location %q: %w", tz, err)
	}
	locationMu.Lock()
	location = loc
	locationMu.Unlock()
	return nil
}

// Location returns the configured timezone.
func Location() *time.Location {
	locationMu.RLock()
	loc := location
	locationMu.RUnlock()
	return loc
}

// Now returns the current time in the configured timezone. Period
// bucket anchors derive from this, so the whole pipeline agrees on
// what "today" means.
func Now() time.Time {
	return time.Now().In(Location())
}
