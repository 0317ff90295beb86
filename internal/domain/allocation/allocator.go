package allocation

import (
	"sort"

	"github.com/mvidal/destino/internal/domain/items"
	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/internal/domain/synth"
	"github.com/mvidal/destino/pkg/metrics"
)

// Backup list caps. The full-population view shows fewer alternates per user
// than the single-user view, which is the one people actually study.
const (
	defaultFullBackupCap = 40
	defaultUserBackupCap = 50
)

// Engine runs priority-ordered assignment over submissions.
type Engine struct {
	generator     *synth.Generator
	fullBackupCap int
	userBackupCap int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSyntheticGenerator sets the generator used for the remaining-users
// scenario. Tests inject a seeded one.
func WithSyntheticGenerator(g *synth.Generator) Option {
	return func(e *Engine) {
		if g != nil {
			e.generator = g
		}
	}
}

// WithBackupCaps overrides the backup list length limits.
func WithBackupCaps(full, single int) Option {
	return func(e *Engine) {
		if full > 0 {
			e.fullBackupCap = full
		}
		if single > 0 {
			e.userBackupCap = single
		}
	}
}

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		generator:     synth.NewGenerator(),
		fullBackupCap: defaultFullBackupCap,
		userBackupCap: defaultUserBackupCap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Allocate runs the full-population assignment: every submitted user, in
// priority order, takes their first still-available preference. Used by the
// administrative view; per-user requests go through AllocateForUser.
//
// The catalog is accepted for signature symmetry; the full path never
// filters destinations.
func (e *Engine) Allocate(submissions []model.Submission, scenario int, catalog []model.Item, competitionDepth int) []model.AllocationResult {
	params := ParamsFor(scenario, competitionDepth)

	users := submissions
	if params.IncludeSyntheticUsers && len(submissions) > 0 {
		// Fill every gap below the last real submitter.
		maxOrder := submissions[0].Order
		for _, s := range submissions[1:] {
			if s.Order > maxOrder {
				maxOrder = s.Order
			}
		}
		users = e.generator.FillMissing(submissions, maxOrder)
		metrics.RecordSyntheticUsersGenerated(len(users) - len(submissions))
	}

	users = sortedByPriority(users)
	assigned := assignSingle(users)

	results := make([]model.AllocationResult, 0, len(users))
	for _, u := range users {
		results = append(results, model.AllocationResult{
			UserID:                u.ID,
			Name:                  u.Name,
			Order:                 u.Order,
			RankedItems:           rankedOrEmpty(u),
			AssignedItemIDs:       assigned[u.ID],
			AvailableByPreference: e.backupList(u, users, assigned, params.CompetitionDepth, nil, e.fullBackupCap),
		})
	}
	return results
}

// AllocateForUser computes one user's result from only the submissions
// strictly above them in priority. The higher-priority users' assignments
// are simulated to build the target's taken-set; nothing about them leaks
// into the result.
func (e *Engine) AllocateForUser(
	submissionsAbove []model.Submission,
	target model.Submission,
	scenario int,
	catalog []model.Item,
	blocked model.BlockedItems,
	competitionDepth int,
) model.AllocationResult {
	params := ParamsFor(scenario, competitionDepth)

	above := submissionsAbove
	if params.IncludeSyntheticUsers {
		above = e.generator.FillMissing(submissionsAbove, target.Order)
		metrics.RecordSyntheticUsersGenerated(len(above) - len(submissionsAbove))
	}
	above = sortedByPriority(above)

	// Simulate the allocation the users above would get.
	taken := make(map[string]bool)
	for _, u := range above {
		for _, id := range u.RankedItems {
			if !taken[id] {
				taken[id] = true
				break
			}
		}
	}

	var blockedIDs []string
	if params.BlockSpecificItems {
		// Blocked destinations are gone for the target entirely, primary
		// assignment included.
		blockedIDs = items.BlockedItemIDs(catalog, blocked)
		for _, id := range blockedIDs {
			taken[id] = true
		}
	}

	var assignedIDs []string
	for _, id := range target.RankedItems {
		if !taken[id] {
			assignedIDs = []string{id}
			taken[id] = true
			break
		}
	}

	// Escalate adversity for the backup scan only.
	simulated := make(map[string]bool, len(taken))
	for id := range taken {
		simulated[id] = true
	}
	if params.CompetitionDepth > 0 {
		for _, u := range above {
			for _, id := range topN(u.RankedItems, params.CompetitionDepth) {
				simulated[id] = true
			}
		}
	}
	for _, id := range blockedIDs {
		simulated[id] = true
	}

	return model.AllocationResult{
		UserID:                target.ID,
		Name:                  target.Name,
		Order:                 target.Order,
		RankedItems:           rankedOrEmpty(target),
		AssignedItemIDs:       assignedIDs,
		AvailableByPreference: scanBackups(target.RankedItems, assignedIDs, simulated, e.userBackupCap),
	}
}

// sortedByPriority returns a copy ordered by (order, submittedAt, id).
func sortedByPriority(submissions []model.Submission) []model.Submission {
	sorted := append([]model.Submission(nil), submissions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return sorted
}

// assignSingle walks users in priority order and gives each their first
// unclaimed preference. A user whose whole list is claimed gets nothing;
// that is a normal outcome, not an error.
func assignSingle(users []model.Submission) map[string][]string {
	claimed := make(map[string]bool)
	assigned := make(map[string][]string, len(users))
	for _, u := range users {
		assigned[u.ID] = []string{}
		for _, id := range u.RankedItems {
			if !claimed[id] {
				claimed[id] = true
				assigned[u.ID] = []string{id}
				break
			}
		}
	}
	return assigned
}

func topN(ids []string, n int) []string {
	if n > len(ids) {
		n = len(ids)
	}
	return ids[:n]
}

func rankedOrEmpty(u model.Submission) []string {
	if u.RankedItems == nil {
		return []string{}
	}
	return u.RankedItems
}
