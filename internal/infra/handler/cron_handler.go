package handler

import (
	"context"
	"net/http"
	"time"

	usecaseRecalc "workrank/internal/usecase/recalc"
)

// CronHandler serves the scheduled recalculation trigger.
type CronHandler struct {
	recalc  *usecaseRecalc.Service
	topN    int
	timeout time.Duration
	now     func() time.Time
}

// NewCronHandler builds a CronHandler. now may be nil.
func NewCronHandler(recalc *usecaseRecalc.Service, topN int, timeout time.Duration, now func() time.Time) *CronHandler {
	if topN <= 0 {
		topN = usecaseRecalc.DefaultCronTopN
	}
	if timeout <= 0 {
		timeout = defaultRecalcTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &CronHandler{
		recalc:  recalc,
		topN:    topN,
		timeout: timeout,
		now:     now,
	}
}

// RegisterRoutes registers the cron endpoints. GET answers scheduler
// health probes without triggering a run.
func (h *CronHandler) RegisterRoutes(r chiRouter) {
	r.Post("/cron/calc-rankings", h.handleRun)
	r.Get("/cron/calc-rankings", h.handleHealth)
}

func (h *CronHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	if h.recalc == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stats, err := h.recalc.Recalculate(ctx, h.topN)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := cronRunResponse{
		Success:      true,
		WeeklyCount:  stats.Weekly.Count,
		MonthlyCount: stats.Monthly.Count,
		Timestamp:    h.now().UTC(),
	}
	if stats.Weekly.Err != nil {
		resp.WeeklyError = stats.Weekly.Err.Error()
	}
	if stats.Monthly.Err != nil {
		resp.MonthlyError = stats.Monthly.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CronHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"job":    "calc-rankings",
	})
}

type cronRunResponse struct {
	Success      bool      `json:"success"`
	WeeklyCount  int       `json:"weeklyCount"`
	MonthlyCount int       `json:"monthlyCount"`
	WeeklyError  string    `json:"weeklyError,omitempty"`
	MonthlyError string    `json:"monthlyError,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
