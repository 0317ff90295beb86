// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
)

// Submission represents one user's ranked preference list for a season.
type Submission struct {
	ID          string   `json:"id"`
	Season      string   `json:"season,omitempty"`
	Name        string   `json:"name"`
	Order       int      `json:"order"`       // priority rank; lower = served first
	RankedItems []string `json:"rankedItems"` // most-wanted first; opaque item IDs
	SubmittedAt int64    `json:"submittedAt"` // epoch ms of the FIRST submission; tie-breaker only

	// IsSynthetic marks users fabricated for the remaining-users simulation.
	// Synthetic submissions live only inside a single allocation call and
	// are never persisted.
	IsSynthetic bool `json:"isSynthetic,omitempty"`
}

// Before reports whether s is served before other in the processing order:
// order ascending, then submittedAt ascending, then ID for determinism.
func (s Submission) Before(other Submission) bool {
	if s.Order != other.Order {
		return s.Order < other.Order
	}
	if s.SubmittedAt != other.SubmittedAt {
		return s.SubmittedAt < other.SubmittedAt
	}
	return s.ID < other.ID
}

// Item is one destination slot from the season catalog. The allocator treats
// the ID as an opaque token; Localidad and Centro exist only for the
// blocked-destination scenario filter.
type Item struct {
	ID        string `json:"id"`
	Localidad string `json:"localidad,omitempty"`
	Centro    string `json:"centro,omitempty"`
}

// BlockedItems selects destinations to mark unavailable in the
// occupied-destinations scenario. Empty slices mean "no filter".
type BlockedItems struct {
	SelectedLocalidades []string `json:"selectedLocalidades"`
	SelectedCentros     []string `json:"selectedCentros"`
}

// Empty reports whether no destination filter is selected.
func (b BlockedItems) Empty() bool {
	return len(b.SelectedLocalidades) == 0 && len(b.SelectedCentros) == 0
}

// AllocationResult is the per-user outcome of an allocation run.
type AllocationResult struct {
	UserID      string   `json:"userId"`
	Name        string   `json:"name"`
	Order       int      `json:"order"`
	RankedItems []string `json:"rankedItems"`

	// AssignedItemIDs holds at most one element: the first still-available
	// preference when the user's turn came, or nothing.
	AssignedItemIDs []string `json:"assignedItemIds"`

	// AvailableByPreference lists what the user would get next under the
	// requested scenario's adversity, best first. Never contains the
	// assigned item and never contains duplicates.
	AvailableByPreference []string `json:"availableByPreference"`
}

// OrderEntry is the public view of a submission used by the orders listing:
// enough to show the queue without exposing anyone's preferences.
type OrderEntry struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
	Name  string `json:"name"`
}

// RefreshJob asks the refresh pipeline to re-fetch one season's submissions
// and prime the season cache.
type RefreshJob struct {
	Season string
}

// NormalizeID renders any item identifier as its canonical string form.
// Catalogs carry numeric IDs and clients send strings; comparing them
// anywhere but in this one form is how "1 != \"1\"" bugs happen.
func NormalizeID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// JSON numbers decode as float64; catalog IDs are whole numbers.
		return strconv.FormatInt(int64(t), 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// NormalizeIDs maps NormalizeID over a list, preserving order.
func NormalizeIDs(vs []any) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, NormalizeID(v))
	}
	return out
}
