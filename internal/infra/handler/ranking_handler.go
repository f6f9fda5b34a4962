package handler

import (
	"net/http"
	"time"

	domainRanking "workrank/internal/domain/ranking"
	domainWork "workrank/internal/domain/work"
	usecaseRanking "workrank/internal/usecase/ranking"
)

const maxRankingLimit = 100

// RankingHandler serves the public leaderboard read endpoint.
type RankingHandler struct {
	service *usecaseRanking.Service
}

// NewRankingHandler builds a RankingHandler.
func NewRankingHandler(service *usecaseRanking.Service) *RankingHandler {
	return &RankingHandler{service: service}
}

// RegisterRoutes registers ranking endpoints.
func (h *RankingHandler) RegisterRoutes(r chiRouter) {
	r.Get("/rankings", h.handleLatest)
}

func (h *RankingHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = string(domainRanking.PeriodWeekly)
	}
	periodType, err := domainRanking.ParsePeriodType(period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := readQueryInt(r, "limit", 1, maxRankingLimit, usecaseRanking.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.Latest(r.Context(), periodType, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, buildRankingResponse(periodType, result))
}

func buildRankingResponse(periodType domainRanking.PeriodType, result usecaseRanking.Result) rankingListResponse {
	resp := rankingListResponse{
		Period:   string(periodType),
		Rankings: make([]rankingItemResponse, 0, len(result.Items)),
	}
	if !result.PeriodStart.IsZero() {
		start := result.PeriodStart
		resp.PeriodStart = &start
	}
	for _, item := range result.Items {
		row := rankingItemResponse{
			Rank:       item.Ranking.Rank,
			WorkID:     int64(item.Ranking.WorkID),
			ClickCount: item.Ranking.ClickCount,
		}
		if item.Work != nil {
			row.Work = toWorkResponse(item.Work)
		}
		resp.Rankings = append(resp.Rankings, row)
	}
	return resp
}

func toWorkResponse(w *domainWork.Work) *workResponse {
	return &workResponse{
		ID:           int64(w.ID),
		ExternalID:   w.ExternalID,
		Title:        w.Title,
		Description:  w.Description,
		ThumbnailURL: w.ThumbnailURL,
		AffiliateURL: w.AffiliateURL,
		MakerName:    w.MakerName,
		IsPublished:  w.IsPublished,
	}
}

type rankingListResponse struct {
	Period      string                `json:"period"`
	PeriodStart *time.Time            `json:"periodStart,omitempty"`
	Rankings    []rankingItemResponse `json:"rankings"`
}

type rankingItemResponse struct {
	Rank       int           `json:"rank"`
	WorkID     int64         `json:"workId"`
	ClickCount int64         `json:"clickCount"`
	Work       *workResponse `json:"work,omitempty"`
}

type workResponse struct {
	ID           int64  `json:"id"`
	ExternalID   string `json:"externalId"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	AffiliateURL string `json:"affiliateUrl"`
	MakerName    string `json:"makerName,omitempty"`
	IsPublished  bool   `json:"isPublished"`
}
