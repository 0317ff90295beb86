package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/mvidal/destino/internal/adapters/repository"
	"github.com/mvidal/destino/internal/domain/allocation"
	"github.com/mvidal/destino/pkg/logger"
	"github.com/mvidal/destino/pkg/metrics"
)

// AllocateHandler runs the allocator, either for the whole season or for a
// single user when the request names one.
type AllocateHandler struct {
	deps Allocator
	log  logger.Logger
}

// NewAllocateHandler creates the handler for POST /api/allocate.
func NewAllocateHandler(deps Allocator) *AllocateHandler {
	return &AllocateHandler{deps: deps, log: logger.Get().Named("api.allocate")}
}

type allocateResponse struct {
	Season   string      `json:"season"`
	Scenario int         `json:"scenario"`
	Results  interface{} `json:"results"`
}

func (h *AllocateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	var req AllocateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Season == "" {
		writeError(w, http.StatusBadRequest, "season is required")
		return
	}
	if req.Scenario < allocation.ScenarioCurrent || req.Scenario > allocation.ScenarioPreferenceDepth {
		writeError(w, http.StatusBadRequest, "unknown scenario")
		return
	}

	// A blocked-destinations run with nothing blocked is just the current
	// state; downgrade instead of filtering against an empty set.
	if req.Scenario == allocation.ScenarioBlockedDestinations && req.BlockedItems.Empty() {
		req.Scenario = allocation.ScenarioCurrent
	}

	req.CompetitionDepth = clampDepth(req.CompetitionDepth, h.deps.MaxCompetitionDepth())

	if req.UserID != "" {
		// Per-user runs are the expensive, user-triggered path; hold each
		// user to the cooldown.
		if allowed, retry := h.deps.Allow(ctx, req.UserID); !allowed {
			seconds := int(math.Ceil(retry.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			metrics.RecordAllocationRateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Code:              http.StatusTooManyRequests,
				Message:           "too many allocation requests, slow down",
				RetryAfterSeconds: seconds,
			})
			return
		}

		result, err := h.deps.AllocateForUser(ctx, req)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no submission for that user in this season")
				return
			}
			h.log.Error(ctx, "allocate for user",
				logger.String("season", req.Season),
				logger.String("user_id", req.UserID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "allocation failed")
			return
		}
		writeJSON(w, http.StatusOK, allocateResponse{Season: req.Season, Scenario: req.Scenario, Results: result})
		return
	}

	results, err := h.deps.Allocate(ctx, req)
	if err != nil {
		h.log.Error(ctx, "allocate season",
			logger.String("season", req.Season),
			logger.Int("scenario", req.Scenario),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "allocation failed")
		return
	}
	writeJSON(w, http.StatusOK, allocateResponse{Season: req.Season, Scenario: req.Scenario, Results: results})
}

// clampDepth bounds the preference-depth parameter to [1, max].
func clampDepth(depth, max int) int {
	if depth < 1 {
		return 1
	}
	if max > 0 && depth > max {
		return max
	}
	return depth
}
