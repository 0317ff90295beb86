package allocation

import "github.com/mvidal/destino/internal/domain/model"

// backupList computes availableByPreference for one user of the full run:
// the items they would get next if their assignment vanished, assuming every
// user with a strictly lower order keeps what they are shown to have, plus
// depth extra preferences per higher user when the scenario escalates.
//
// This is a single greedy scan against a static taken-set, not a
// re-allocation per backup slot. Re-running the full assignment for every
// alternate is quadratic in the population and changes nothing the user can
// see at this depth.
func (e *Engine) backupList(
	u model.Submission,
	users []model.Submission,
	assigned map[string][]string,
	depth int,
	extraUnavailable []string,
	limit int,
) []string {
	if len(u.RankedItems) == 0 {
		return []string{}
	}

	taken := make(map[string]bool)
	for _, other := range users {
		if other.Order >= u.Order {
			continue
		}
		for _, id := range assigned[other.ID] {
			taken[id] = true
		}
		if depth > 0 {
			for _, id := range topN(other.RankedItems, depth) {
				taken[id] = true
			}
		}
	}
	for _, id := range extraUnavailable {
		taken[id] = true
	}

	return scanBackups(u.RankedItems, assigned[u.ID], taken, limit)
}

// scanBackups walks ranked preferences in order collecting available items:
// the user's own assignment is excluded, duplicates are excluded, and the
// result stops at limit.
func scanBackups(ranked []string, assignedIDs []string, taken map[string]bool, limit int) []string {
	own := ""
	if len(assignedIDs) > 0 {
		own = assignedIDs[0]
	}

	backups := []string{}
	seen := map[string]bool{}
	for _, id := range ranked {
		if len(backups) >= limit {
			break
		}
		if id == own || seen[id] || taken[id] {
			continue
		}
		seen[id] = true
		backups = append(backups, id)
	}
	return backups
}
