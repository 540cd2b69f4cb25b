package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"chargemap/internal/auth"
	geography "chargemap/internal/geography/domain"
	"chargemap/internal/suggestion/application"
	suggestion "chargemap/internal/suggestion/domain"
)

// Handler provides suggestion HTTP endpoints.
type Handler struct {
	service *application.Service
	logger  *log.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("suggestion handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}, nil
}

type reviewRequest struct {
	Action   string `json:"action"`
	Reviewer string `json:"reviewer"`
	Notes    string `json:"notes"`
}

// ServeHTTP handles /api/v1/suggestions and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/suggestions":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleSubmit(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(r.URL.Path, "/api/v1/suggestions/"):
		h.handleReview(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var draft suggestion.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	item, err := h.service.Submit(r.Context(), draft)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var filter application.Filter
	if value := r.URL.Query().Get("status"); value != "" {
		status, err := suggestion.ParseStatus(value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Status = status
	}
	if value := r.URL.Query().Get("plz"); value != "" {
		code, ok := geography.ParsePostalCode(value)
		if !ok {
			http.Error(w, "invalid plz", http.StatusBadRequest)
			return
		}
		filter.PostalCode = code
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/suggestions/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "review" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	reviewer := strings.TrimSpace(req.Reviewer)
	if reviewer == "" {
		reviewer = auth.SubjectFromContext(r.Context())
	}
	item, err := h.service.Review(r.Context(), application.ReviewCommand{
		ID:       id,
		Action:   suggestion.Action(req.Action),
		Reviewer: reviewer,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(item)
}

func respondError(w http.ResponseWriter, logger *log.Logger, err error) {
	switch {
	case errors.Is(err, suggestion.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, suggestion.ErrInvalidPostalCode),
		errors.Is(err, suggestion.ErrEmptyAddress),
		errors.Is(err, suggestion.ErrEmptyReason),
		errors.Is(err, suggestion.ErrUnknownAction),
		errors.Is(err, suggestion.ErrEmptyReviewer):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Printf("suggestion request failed: %v", err)
		http.Error(w, "suggestion store error", http.StatusInternalServerError)
	}
}
