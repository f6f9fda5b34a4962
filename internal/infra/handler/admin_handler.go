package handler

import (
	"context"
	"net/http"
	"time"

	usecaseAnalytics "workrank/internal/usecase/analytics"
	usecaseRecalc "workrank/internal/usecase/recalc"
)

const defaultRecalcTimeout = 2 * time.Minute

// AdminHandler serves manual recalculation and the analytics summary.
type AdminHandler struct {
	recalc    *usecaseRecalc.Service
	analytics *usecaseAnalytics.Service
	topN      int
	timeout   time.Duration
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(recalc *usecaseRecalc.Service, analytics *usecaseAnalytics.Service, topN int, timeout time.Duration) *AdminHandler {
	if topN <= 0 {
		topN = usecaseRecalc.DefaultManualTopN
	}
	if timeout <= 0 {
		timeout = defaultRecalcTimeout
	}
	return &AdminHandler{
		recalc:    recalc,
		analytics: analytics,
		topN:      topN,
		timeout:   timeout,
	}
}

// RegisterRoutes registers admin endpoints.
func (h *AdminHandler) RegisterRoutes(r chiRouter) {
	r.Post("/admin/rankings/recalculate", h.handleRecalculate)
	r.Get("/admin/analytics", h.handleAnalytics)
}

func (h *AdminHandler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, recalculateResponse{
		Success: true,
		Message: "rankings recalculated",
		Stats: recalcStatsResponse{
			Weekly:  toPeriodResult(stats.Weekly),
			Monthly: toPeriodResult(stats.Monthly),
		},
	})
}

func (h *AdminHandler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}

	summary, err := h.analytics.Summarize(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := analyticsResponse{
		TopWorks:  make([]topWorkResponse, 0, len(summary.TopWorks)),
		LinkTypes: make([]linkTypeCountResponse, 0, len(summary.LinkTypes)),
	}
	for _, tw := range summary.TopWorks {
		resp.TopWorks = append(resp.TopWorks, topWorkResponse{
			WorkID:     int64(tw.WorkID),
			Title:      tw.Title,
			ClickCount: tw.Count,
		})
	}
	for _, lt := range summary.LinkTypes {
		resp.LinkTypes = append(resp.LinkTypes, linkTypeCountResponse{
			LinkType: lt.LinkType,
			Count:    lt.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func toPeriodResult(res usecaseRecalc.PeriodResult) periodResultResponse {
	out := periodResultResponse{Count: res.Count}
	if !res.PeriodStart.IsZero() {
		start := res.PeriodStart
		out.PeriodStart = &start
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

type recalculateResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Stats   recalcStatsResponse `json:"stats"`
}

type recalcStatsResponse struct {
	Weekly  periodResultResponse `json:"weekly"`
	Monthly periodResultResponse `json:"monthly"`
}

type periodResultResponse struct {
	PeriodStart *time.Time `json:"periodStart,omitempty"`
	Count       int        `json:"count"`
	Error       string     `json:"error,omitempty"`
}

type analyticsResponse struct {
	TopWorks  []topWorkResponse       `json:"topWorks"`
	LinkTypes []linkTypeCountResponse `json:"linkTypes"`
}

type topWorkResponse struct {
	WorkID     int64  `json:"workId"`
	Title      string `json:"title"`
	ClickCount int64  `json:"clickCount"`
}

type linkTypeCountResponse struct {
	LinkType string `json:"linkType"`
	Count    int64  `json:"count"`
}
