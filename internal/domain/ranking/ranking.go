package ranking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"workrank/internal/domain/work"
)

// ID identifies a ranking row.
type ID = uuid.UUID

// PeriodType selects both the rolling lookback window and the bucket
// anchoring rule for a ranking snapshot.
type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

// ParsePeriodType validates a period type string.
func ParsePeriodType(value string) (PeriodType, error) {
	switch PeriodType(value) {
	case PeriodWeekly, PeriodMonthly:
		return PeriodType(value), nil
	}
	return "", fmt.Errorf("invalid period type: %q", value)
}

// Ranking is one row of a periodically recomputed leaderboard snapshot.
// The triple (PeriodType, PeriodStart, WorkID) is unique; rank and
// click count are overwritten on every recomputation of the bucket.
type Ranking struct {
	ID          ID
	PeriodType  PeriodType
	PeriodStart time.Time
	WorkID      work.ID
	Rank        int
	ClickCount  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Entry is one aggregated (work, count) pair, ordered most-clicked first.
type Entry struct {
	WorkID work.ID
	Count  int64
}

// Bucket identifies the storage partition and lookback window for one
// recomputation run.
type Bucket struct {
	PeriodType PeriodType
	// PeriodStart is the canonical anchor. It stays constant for every
	// recomputation within the same calendar week or month, so repeated
	// runs overwrite the same rows instead of creating new buckets.
	PeriodStart time.Time
	// WindowStart is the trailing lookback boundary. Clicks at or after
	// this instant count toward the aggregate.
	WindowStart time.Time
}

const (
	weeklyLookback  = 7 * 24 * time.Hour
	monthlyLookback = 30 * 24 * time.Hour
)

// ResolveBucket computes the bucket for a period type at the given
// instant. It is a pure function of its arguments; callers inject the
// clock. The weekly anchor is the most recent Sunday at midnight, the
// monthly anchor is the 1st of the current month at midnight, both in
// now's location. The monthly window is a trailing 30 days, not
// month-to-date.
func ResolveBucket(periodType PeriodType, now time.Time) (Bucket, error) {
	switch periodType {
	case PeriodWeekly:
		day := startOfDay(now)
		weekStart := day.AddDate(0, 0, -int(day.Weekday()))
		return Bucket{
			PeriodType:  PeriodWeekly,
			PeriodStart: weekStart,
			WindowStart: now.Add(-weeklyLookback),
		}, nil
	case PeriodMonthly:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Bucket{
			PeriodType:  PeriodMonthly,
			PeriodStart: monthStart,
			WindowStart: now.Add(-monthlyLookback),
		}, nil
	}
	return Bucket{}, fmt.Errorf("invalid period type: %q", periodType)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
