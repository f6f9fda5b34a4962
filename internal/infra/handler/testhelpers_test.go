package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainClick "workrank/internal/domain/click"
	domainRanking "workrank/internal/domain/ranking"
	"workrank/internal/domain/repository"
	domainWork "workrank/internal/domain/work"
	usecaseAnalytics "workrank/internal/usecase/analytics"
	usecaseClick "workrank/internal/usecase/click"
	usecaseRanking "workrank/internal/usecase/ranking"
	usecaseRecalc "workrank/internal/usecase/recalc"
)

// fixedNow keeps bucket anchors deterministic across handler tests.
// 2024-05-15 is a Wednesday; the weekly anchor is Sunday 2024-05-12.
var fixedNow = time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// testServer wraps httptest.Server for integration testing.
type testServer struct {
	*httptest.Server
	router http.Handler
}

// newTestServer creates a test HTTP server with the given handlers.
func newTestServer(cfg RouterConfig) *testServer {
	router := NewRouter(cfg)
	srv := httptest.NewServer(router)
	return &testServer{
		Server: srv,
		router: router,
	}
}

// get performs a GET request to the test server.
func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// post performs a POST request with a JSON body.
func (ts *testServer) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(ts.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// postRaw performs a POST request with a raw body.
func (ts *testServer) postRaw(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// decodeJSON decodes response body as JSON.
func decodeJSON(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}

// assertStatus checks HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}

// assertErrorResponse validates error response structure.
func assertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int) map[string]string {
	t.Helper()
	assertStatus(t, resp, expectedStatus)

	var result map[string]string
	decodeJSON(t, resp, &result)
	if _, ok := result["error"]; !ok {
		t.Error("error response missing 'error' field")
	}
	return result
}

// Mock repository implementations for isolated handler testing

// mockClickStore is a mock click event store.
type mockClickStore struct {
	insertFunc func(ctx context.Context, event *domainClick.Event) error
	events     []*domainClick.Event
}

func (m *mockClickStore) Insert(ctx context.Context, event *domainClick.Event) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, event)
	}
	m.events = append(m.events, event)
	return nil
}

// mockClickAggregator is a mock click aggregation source.
type mockClickAggregator struct {
	countByWorkFunc     func(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error)
	countByLinkTypeFunc func(ctx context.Context) ([]repository.LinkTypeCount, error)
}

func (m *mockClickAggregator) CountByWork(ctx context.Context, since time.Time, topN int) ([]domainRanking.Entry, error) {
	if m.countByWorkFunc != nil {
		return m.countByWorkFunc(ctx, since, topN)
	}
	return nil, nil
}

func (m *mockClickAggregator) CountByLinkType(ctx context.Context) ([]repository.LinkTypeCount, error) {
	if m.countByLinkTypeFunc != nil {
		return m.countByLinkTypeFunc(ctx)
	}
	return nil, nil
}

// isWeeklyWindow discriminates the two pipeline windows by lookback length.
func isWeeklyWindow(since time.Time) bool {
	return fixedNow.Sub(since) < 8*24*time.Hour
}

// mockRankingStore is a mock ranking repository covering reads and writes.
type mockRankingStore struct {
	latestFunc func(ctx context.Context, periodType domainRanking.PeriodType) (time.Time, bool, error)
	listFunc   func(ctx context.Context, periodType domainRanking.PeriodType, periodStart time.Time, limit int) ([]*domainRanking.Ranking, error)
	upsertFunc func(ctx context.Context, row *domainRanking.Ranking) error
	upserted   []*domainRanking.Ranking
}

func (m *mockRankingStore) LatestPeriodStart(ctx context.Context, periodType domainRanking.PeriodType) (time.Time, bool, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, periodType)
	}
	return time.Time{}, false, nil
}

func (m *mockRankingStore) ListBucket(ctx context.Context, periodType domainRanking.PeriodType, periodStart time.Time, limit int) ([]*domainRanking.Ranking, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, periodType, periodStart, limit)
	}
	return nil, nil
}

func (m *mockRankingStore) Upsert(ctx context.Context, row *domainRanking.Ranking) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, row)
	}
	m.upserted = append(m.upserted, row)
	return nil
}

// mockWorkRepository is a mock work read model.
type mockWorkRepository struct {
	works []*domainWork.Work
}

func (m *mockWorkRepository) ListByIDs(ctx context.Context, ids []domainWork.ID) ([]*domainWork.Work, error) {
	byID := make(map[domainWork.ID]bool, len(ids))
	for _, id := range ids {
		byID[id] = true
	}
	var out []*domainWork.Work
	for _, w := range m.works {
		if byID[w.ID] {
			out = append(out, w)
		}
	}
	return out, nil
}

// mockHealthChecker is a mock health checker.
type mockHealthChecker struct {
	healthCheckFunc func(ctx context.Context) error
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.healthCheckFunc != nil {
		return m.healthCheckFunc(ctx)
	}
	return nil
}

// Service builder helpers

func newTestClickService(store *mockClickStore) *usecaseClick.Service {
	return usecaseClick.NewService(store, nil, fixedClock)
}

func newTestRankingService(rankings *mockRankingStore, works *mockWorkRepository) *usecaseRanking.Service {
	return usecaseRanking.NewService(rankings, works, nil)
}

func newTestRecalcService(clicks *mockClickAggregator, rankings *mockRankingStore) *usecaseRecalc.Service {
	return usecaseRecalc.NewService(clicks, rankings, nil, nil, fixedClock, nil)
}

func newTestAnalyticsService(clicks *mockClickAggregator, works *mockWorkRepository) *usecaseAnalytics.Service {
	return usecaseAnalytics.NewService(clicks, works)
}

// Test data factories

func newTestWork(id domainWork.ID, title string) *domainWork.Work {
	return &domainWork.Work{
		ID:           id,
		ExternalID:   "ext-" + title,
		Title:        title,
		AffiliateURL: "https://affiliate.example.com/" + title,
		IsPublished:  true,
	}
}

func newTestRanking(periodType domainRanking.PeriodType, periodStart time.Time, workID domainWork.ID, rank int, count int64) *domainRanking.Ranking {
	return &domainRanking.Ranking{
		PeriodType:  periodType,
		PeriodStart: periodStart,
		WorkID:      workID,
		Rank:        rank,
		ClickCount:  count,
	}
}
