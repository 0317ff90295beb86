package api

import (
	"net/http"

	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/pkg/logger"
)

// StateHandler serves the raw submission list of a season.
type StateHandler struct {
	deps StateReader
	log  logger.Logger
}

// NewStateHandler creates the handler for GET /api/state.
func NewStateHandler(deps StateReader) *StateHandler {
	return &StateHandler{deps: deps, log: logger.Get().Named("api.state")}
}

type stateResponse struct {
	Season      string             `json:"season"`
	IDField     string             `json:"idField"`
	Count       int                `json:"count"`
	Items       []model.Item       `json:"items"`
	Submissions []model.Submission `json:"submissions"`
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	season := r.URL.Query().Get("season")
	if season == "" {
		writeError(w, http.StatusBadRequest, "season query parameter is required")
		return
	}

	subs, err := h.deps.SeasonState(ctx, season)
	if err != nil {
		h.log.Error(ctx, "read season state", logger.String("season", season), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read season state")
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}

	items := h.deps.SeasonItems(ctx, season)
	if items == nil {
		items = []model.Item{}
	}

	writeJSON(w, http.StatusOK, stateResponse{
		Season:      season,
		IDField:     h.deps.ItemIDField(),
		Count:       len(subs),
		Items:       items,
		Submissions: subs,
	})
}

// OrdersHandler serves the taken priority slots of a season, used by the
// form to warn about duplicate orders.
type OrdersHandler struct {
	deps StateReader
	log  logger.Logger
}

// NewOrdersHandler creates the handler for GET /api/orders.
func NewOrdersHandler(deps StateReader) *OrdersHandler {
	return &OrdersHandler{deps: deps, log: logger.Get().Named("api.orders")}
}

type ordersResponse struct {
	Season string             `json:"season"`
	Orders []model.OrderEntry `json:"orders"`
}

func (h *OrdersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	season := r.URL.Query().Get("season")
	if season == "" {
		writeError(w, http.StatusBadRequest, "season query parameter is required")
		return
	}

	orders, err := h.deps.Orders(ctx, season)
	if err != nil {
		h.log.Error(ctx, "read season orders", logger.String("season", season), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read season orders")
		return
	}
	if orders == nil {
		orders = []model.OrderEntry{}
	}

	writeJSON(w, http.StatusOK, ordersResponse{Season: season, Orders: orders})
}
