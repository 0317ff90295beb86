package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/pkg/logger"
	"github.com/mvidal/destino/pkg/metrics"
)

// SubmitHandler accepts preference submissions.
type SubmitHandler struct {
	deps Submitter
	log  logger.Logger
	now  func() time.Time
}

// NewSubmitHandler creates the handler for POST /api/submit.
func NewSubmitHandler(deps Submitter) *SubmitHandler {
	return &SubmitHandler{
		deps: deps,
		log:  logger.Get().Named("api.submit"),
		now:  time.Now,
	}
}

type submitResponse struct {
	OK         bool             `json:"ok"`
	UserID     string           `json:"id"`
	Submission model.Submission `json:"submission"`
}

func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Order <= 0 {
		writeError(w, http.StatusBadRequest, "order must be a positive integer")
		return
	}

	// First-time submitters get an id; the season defaults to the current
	// school year.
	if req.UserID == "" {
		req.UserID = "u_" + uuid.New().String()
	}
	if req.Season == "" {
		req.Season = strconv.Itoa(h.now().Year())
	}

	// The store keeps the first timestamp on re-submission, so this stamp
	// only sticks for first-time submitters. It is the order tie-breaker.
	sub := model.Submission{
		ID:          req.UserID,
		Season:      req.Season,
		Name:        req.Name,
		Order:       req.Order,
		RankedItems: dedupeIDs(req.RankedItems),
		SubmittedAt: h.now().UnixMilli(),
	}

	stored, err := h.deps.SubmitPreferences(ctx, sub)
	if err != nil {
		h.log.Error(ctx, "store submission",
			logger.String("season", req.Season),
			logger.String("user_id", req.UserID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store submission")
		return
	}

	metrics.RecordSubmissionAccepted()
	writeJSON(w, http.StatusOK, submitResponse{OK: true, UserID: stored.ID, Submission: stored})
}

// dedupeIDs drops repeated item IDs, keeping first occurrences in order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
