package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	domainRanking "workrank/internal/domain/ranking"
	"workrank/internal/domain/repository"
	domainWork "workrank/internal/domain/work"
)

func newAdminTestServer(clicks *mockClickAggregator, rankings *mockRankingStore, works *mockWorkRepository) *testServer {
	return newTestServer(RouterConfig{
		AdminHandler: NewAdminHandler(
			newTestRecalcService(clicks, rankings),
			newTestAnalyticsService(clicks, works),
			0, 0,
		),
	})
}

func TestAdminRecalculate(t *testing.T) {
	clicks := &mockClickAggregator{
		countByWorkFunc: func(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error) {
			if topN != 50 {
				t.Errorf("topN = %d, want 50 for the manual trigger", topN)
			}
			if isWeeklyWindow(since) {
				return []domainRanking.Entry{{WorkID: 1, Count: 9}, {WorkID: 2, Count: 4}}, nil
			}
			return []domainRanking.Entry{{WorkID: 1, Count: 30}}, nil
		},
	}
	rankings := &mockRankingStore{}

	ts := newAdminTestServer(clicks, rankings, &mockWorkRepository{})
	defer ts.Close()

	resp := ts.post(t, "/admin/rankings/recalculate", nil)
	assertStatus(t, resp, http.StatusOK)

	var result recalculateResponse
	decodeJSON(t, resp, &result)
	if !result.Success {
		t.Error("expected success = true")
	}
	if result.Stats.Weekly.Count != 2 {
		t.Errorf("weekly count = %d, want 2", result.Stats.Weekly.Count)
	}
	if result.Stats.Monthly.Count != 1 {
		t.Errorf("monthly count = %d, want 1", result.Stats.Monthly.Count)
	}
	if result.Stats.Weekly.Error != "" || result.Stats.Monthly.Error != "" {
		t.Errorf("unexpected period errors: %+v", result.Stats)
	}
	if len(rankings.upserted) != 3 {
		t.Errorf("upserted rows = %d, want 3", len(rankings.upserted))
	}
}

func TestAdminRecalculatePartialFailure(t *testing.T) {
	clicks := &mockClickAggregator{
		countByWorkFunc: func(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error) {
			if isWeeklyWindow(since) {
				return nil, errors.New("query timeout")
			}
			return []domainRanking.Entry{{WorkID: 5, Count: 12}}, nil
		},
	}

	ts := newAdminTestServer(clicks, &mockRankingStore{}, &mockWorkRepository{})
	defer ts.Close()

	resp := ts.post(t, "/admin/rankings/recalculate", nil)
	assertStatus(t, resp, http.StatusOK)

	var result recalculateResponse
	decodeJSON(t, resp, &result)
	if result.Stats.Weekly.Error == "" {
		t.Error("weekly error missing from partial result")
	}
	if result.Stats.Monthly.Count != 1 {
		t.Errorf("monthly count = %d, want 1", result.Stats.Monthly.Count)
	}
}

func TestAdminRecalculateAllFail(t *testing.T) {
	clicks := &mockClickAggregator{
		countByWorkFunc: func(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error) {
			return nil, errors.New("database down")
		},
	}

	ts := newAdminTestServer(clicks, &mockRankingStore{}, &mockWorkRepository{})
	defer ts.Close()

	resp := ts.post(t, "/admin/rankings/recalculate", nil)
	assertErrorResponse(t, resp, http.StatusInternalServerError)
}

func TestAdminAnalytics(t *testing.T) {
	clicks := &mockClickAggregator{
		countByWorkFunc: func(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error) {
			if !since.IsZero() {
				t.Errorf("analytics aggregate must be all-time, got since = %v", since)
			}
			return []domainRanking.Entry{{WorkID: 1, Count: 42}, {WorkID: 2, Count: 7}}, nil
		},
		countByLinkTypeFunc: func(ctx context.Context) ([]repository.LinkTypeCount, error) {
			return []repository.LinkTypeCount{
				{LinkType: "affiliate", Count: 40},
				{LinkType: "sample", Count: 9},
			}, nil
		},
	}
	works := &mockWorkRepository{works: []*domainWork.Work{
		newTestWork(1, "first"),
		newTestWork(2, "second"),
	}}

	ts := newAdminTestServer(clicks, &mockRankingStore{}, works)
	defer ts.Close()

	resp := ts.get(t, "/admin/analytics")
	assertStatus(t, resp, http.StatusOK)

	var result analyticsResponse
	decodeJSON(t, resp, &result)
	if len(result.TopWorks) != 2 {
		t.Fatalf("top works = %d, want 2", len(result.TopWorks))
	}
	if result.TopWorks[0].Title != "first" || result.TopWorks[0].ClickCount != 42 {
		t.Errorf("top work = %+v", result.TopWorks[0])
	}
	if len(result.LinkTypes) != 2 || result.LinkTypes[0].LinkType != "affiliate" {
		t.Errorf("link types = %+v", result.LinkTypes)
	}
}

func TestAdminAnalyticsError(t *testing.T) {
	clicks := &mockClickAggregator{
		countByWorkFunc: func(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error) {
			return nil, errors.New("database down")
		},
	}

	ts := newAdminTestServer(clicks, &mockRankingStore{}, &mockWorkRepository{})
	defer ts.Close()

	resp := ts.get(t, "/admin/analytics")
	assertErrorResponse(t, resp, http.StatusInternalServerError)
}
