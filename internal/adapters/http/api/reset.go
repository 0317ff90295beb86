package api

import (
	"errors"
	"net/http"

	"github.com/mvidal/destino/internal/adapters/repository"
	"github.com/mvidal/destino/pkg/logger"
)

// ResetHandler removes one user's submission from one season.
type ResetHandler struct {
	deps Resetter
	log  logger.Logger
}

// NewResetHandler creates the handler for POST /api/reset-user.
func NewResetHandler(deps Resetter) *ResetHandler {
	return &ResetHandler{deps: deps, log: logger.Get().Named("api.reset")}
}

type resetRequest struct {
	Season string `json:"season"`
	UserID string `json:"userId"`
}

type resetResponse struct {
	Status  string   `json:"status"`
	UserID  string   `json:"userId"`
	Seasons []string `json:"seasons,omitempty"`
}

func (h *ResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Season == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "season and userId are required")
		return
	}

	if err := h.deps.ResetUser(ctx, req.Season, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no submission for that user in this season")
			return
		}
		h.log.Error(ctx, "reset user",
			logger.String("season", req.Season),
			logger.String("user_id", req.UserID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reset user")
		return
	}

	writeJSON(w, http.StatusOK, resetResponse{Status: "deleted", UserID: req.UserID})
}

// ResetAllHandler removes a user's submissions from every season.
type ResetAllHandler struct {
	deps Resetter
	log  logger.Logger
}

// NewResetAllHandler creates the handler for POST /api/reset-user-all.
func NewResetAllHandler(deps Resetter) *ResetAllHandler {
	return &ResetAllHandler{deps: deps, log: logger.Get().Named("api.reset-all")}
}

type resetAllRequest struct {
	UserID string `json:"userId"`
}

func (h *ResetAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	var req resetAllRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	seasons, err := h.deps.ResetUserAll(ctx, req.UserID)
	if err != nil {
		h.log.Error(ctx, "reset user everywhere",
			logger.String("user_id", req.UserID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reset user")
		return
	}
	if seasons == nil {
		seasons = []string{}
	}

	writeJSON(w, http.StatusOK, resetResponse{Status: "deleted", UserID: req.UserID, Seasons: seasons})
}
