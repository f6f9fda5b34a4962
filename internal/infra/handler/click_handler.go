package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	domainClick "workrank/internal/domain/click"
	domainWork "workrank/internal/domain/work"
	usecaseClick "workrank/internal/usecase/click"
)

// ClickHandler serves click tracking endpoints.
type ClickHandler struct {
	service *usecaseClick.Service
}

// NewClickHandler builds a ClickHandler.
func NewClickHandler(service *usecaseClick.Service) *ClickHandler {
	return &ClickHandler{service: service}
}

// RegisterRoutes registers click endpoints.
func (h *ClickHandler) RegisterRoutes(r chiRouter) {
	r.Post("/clicks", h.handleRecord)
}

func (h *ClickHandler) handleRecord(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	event := &domainClick.Event{
		PageType:    req.PageType,
		PageID:      req.PageID,
		LinkType:    req.LinkType,
		Destination: req.Destination,
		UserAgent:   r.UserAgent(),
		Referer:     r.Referer(),
	}
	if req.WorkID != nil {
		id := domainWork.ID(*req.WorkID)
		event.WorkID = &id
	}

	if err := h.service.Record(r.Context(), event); err != nil {
		if errors.Is(err, domainClick.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, clickResponse{Success: true})
}

type clickRequest struct {
	PageType    string `json:"pageType"`
	PageID      *int64 `json:"pageId"`
	LinkType    string `json:"linkType"`
	Destination string `json:"destination"`
	WorkID      *int64 `json:"workId"`
}

type clickResponse struct {
	Success bool `json:"success"`
}
