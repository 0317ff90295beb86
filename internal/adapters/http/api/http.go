// Package api exposes the allocation engine over HTTP. Each endpoint is a
// small handler struct with its own dependency interface so tests can fake
// exactly what they need.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mvidal/destino/internal/domain/model"
)

// AllocateRequest carries the parameters of a run of the allocator.
type AllocateRequest struct {
	Season           string             `json:"season"`
	UserID           string             `json:"userId,omitempty"`
	Scenario         int                `json:"scenario"`
	CompetitionDepth int                `json:"competitionDepth,omitempty"`
	BlockedItems     model.BlockedItems `json:"blockedItems"`
}

// SubmitRequest is the body of POST /api/submit.
type SubmitRequest struct {
	Season      string   `json:"season"`
	UserID      string   `json:"userId"`
	Name        string   `json:"name"`
	Order       int      `json:"order"`
	RankedItems []string `json:"rankedItems"`
}

// Submitter stores a user's preference list.
type Submitter interface {
	SubmitPreferences(ctx context.Context, sub model.Submission) (model.Submission, error)
}

// Allocator runs the allocation for a whole season or a single user.
// Per-user runs are rate limited; Allow reports whether userID may run one
// now and, when it may not, the remaining cooldown.
type Allocator interface {
	Allow(ctx context.Context, userID string) (bool, time.Duration)
	Allocate(ctx context.Context, req AllocateRequest) ([]model.AllocationResult, error)
	AllocateForUser(ctx context.Context, req AllocateRequest) (model.AllocationResult, error)
	MaxCompetitionDepth() int
}

// StateReader serves the raw submission state of a season.
type StateReader interface {
	SeasonState(ctx context.Context, season string) ([]model.Submission, error)
	// SeasonItems returns the destination catalog of a season, or nil when
	// no catalog is available.
	SeasonItems(ctx context.Context, season string) []model.Item
	// ItemIDField names the catalog column clients should treat as the
	// destination identifier.
	ItemIDField() string
	Orders(ctx context.Context, season string) ([]model.OrderEntry, error)
}

// Resetter removes stored submissions.
type Resetter interface {
	ResetUser(ctx context.Context, season, userID string) error
	ResetUserAll(ctx context.Context, userID string) ([]string, error)
}

// ConfigReader exposes the publicly visible runtime settings.
type ConfigReader interface {
	PublicConfig() map[string]interface{}
}

// StatsProvider supplies runtime statistics for the stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Dependencies bundles everything the HTTP layer needs from the application.
type Dependencies interface {
	Submitter
	Allocator
	StateReader
	Resetter
	ConfigReader
	StatsProvider
}

// Server owns the HTTP handlers of the public API.
type Server struct {
	submit   *SubmitHandler
	allocate *AllocateHandler
	state    *StateHandler
	orders   *OrdersHandler
	reset    *ResetHandler
	resetAll *ResetAllHandler
	config   *ConfigHandler
	stats    *StatsHandler
	health   *HealthHandler
}

// NewServer wires the handlers against deps.
func NewServer(deps Dependencies) *Server {
	return &Server{
		submit:   NewSubmitHandler(deps),
		allocate: NewAllocateHandler(deps),
		state:    NewStateHandler(deps),
		orders:   NewOrdersHandler(deps),
		reset:    NewResetHandler(deps),
		resetAll: NewResetAllHandler(deps),
		config:   NewConfigHandler(deps),
		stats:    NewStatsHandler(deps),
		health:   NewHealthHandler(),
	}
}

// Register attaches every endpoint to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies) error {
	if mux == nil {
		return NewKind("api.Register", ErrNilMux)
	}
	if deps == nil {
		return NewKind("api.Register", ErrNilDependencies)
	}

	s := NewServer(deps)

	mux.Handle("/api/submit", noStore(MetricsMiddleware(s.submit, "submit")))
	mux.Handle("/api/allocate", noStore(MetricsMiddleware(s.allocate, "allocate")))
	mux.Handle("/api/state", noStore(MetricsMiddleware(s.state, "state")))
	mux.Handle("/api/orders", noStore(MetricsMiddleware(s.orders, "orders")))
	mux.Handle("/api/reset-user", noStore(MetricsMiddleware(s.reset, "reset-user")))
	mux.Handle("/api/reset-user-all", noStore(MetricsMiddleware(s.resetAll, "reset-user-all")))
	mux.Handle("/api/config", noStore(MetricsMiddleware(s.config, "config")))
	mux.Handle("/stats", MetricsMiddleware(s.stats, "stats"))
	mux.Handle("/healthz", MetricsMiddleware(s.health, "healthz"))

	return nil
}
