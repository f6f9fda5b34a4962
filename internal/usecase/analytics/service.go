package analytics

import (
	"context"
	"fmt"
	"time"

	domainRanking "workrank/internal/domain/ranking"
	domainWork "workrank/internal/domain/work"
	"workrank/internal/domain/repository"
)

// topWorksLimit matches the admin dashboard's top-10 list.
const topWorksLimit = 10

// ClickRepository aggregates the click log.
type ClickRepository interface {
	CountByWork(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error)
	CountByLinkType(ctx context.Context) ([]repository.LinkTypeCount, error)
}

// WorkRepository joins titles onto aggregated work ids.
type WorkRepository interface {
	ListByIDs(ctx context.Context, ids []domainWork.ID) ([]*domainWork.Work, error)
}

// Service produces the admin analytics summary.
type Service struct {
	clicks ClickRepository
	works  WorkRepository
}

// TopWork is an all-time most-clicked work with its display title.
type TopWork struct {
	WorkID domainWork.ID
	Title  string
	Count  int64
}

// Summary is the admin dashboard payload.
type Summary struct {
	TopWorks  []TopWork
	LinkTypes []repository.LinkTypeCount
}

// NewService builds an analytics service.
func NewService(clicks ClickRepository, works WorkRepository) *Service {
	return &Service{clicks: clicks, works: works}
}

// Summarize returns the all-time top works by clicks and the click
// distribution per link type.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	// Zero since means no lower bound on created_at.
	entries, err := s.clicks.CountByWork(ctx, time.Time{}, topWorksLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("count clicks by work: %w", err)
	}

	titles, err := s.loadTitles(ctx, entries)
	if err != nil {
		return Summary{}, err
	}

	topWorks := make([]TopWork, 0, len(entries))
	for _, entry := range entries {
		topWorks = append(topWorks, TopWork{
			WorkID: entry.WorkID,
			Title:  titles[entry.WorkID],
			Count:  entry.Count,
		})
	}

	linkTypes, err := s.clicks.CountByLinkType(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("count clicks by link type: %w", err)
	}

	return Summary{TopWorks: topWorks, LinkTypes: linkTypes}, nil
}

func (s *Service) loadTitles(ctx context.Context, entries []domainRanking.Entry) (map[domainWork.ID]string, error) {
	if s.works == nil || len(entries) == 0 {
		return nil, nil
	}
	ids := make([]domainWork.ID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.WorkID)
	}
	works, err := s.works.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load works: %w", err)
	}
	titles := make(map[domainWork.ID]string, len(works))
	for _, w := range works {
		titles[w.ID] = w.Title
	}
	return titles, nil
}
