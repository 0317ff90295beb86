// Package items derives demand statistics and blocking sets from the season
// catalog and the submitted preference lists.
package items

import (
	"sort"

	"github.com/mvidal/destino/internal/domain/model"
)

// Default limits for the popularity helpers.
const (
	defaultMaxDesired = 10
	defaultMaxCentros = 3
)

// BlockedItemIDs resolves the occupied-destinations selection to concrete
// item IDs. An empty selection blocks nothing; within a populated selection,
// an empty localidad or centro list matches everything on that axis.
func BlockedItemIDs(catalog []model.Item, blocked model.BlockedItems) []string {
	if blocked.Empty() {
		return nil
	}

	localidades := toSet(blocked.SelectedLocalidades)
	centros := toSet(blocked.SelectedCentros)

	var out []string
	for _, it := range catalog {
		localidadMatch := len(localidades) == 0 || localidades[it.Localidad]
		centroMatch := len(centros) == 0 || centros[it.Centro]
		if localidadMatch && centroMatch {
			out = append(out, it.ID)
		}
	}
	return out
}

// MostDesiredItems returns up to max item IDs ranked by how many users put
// them in first position. Ties resolve by item ID so the output is stable.
func MostDesiredItems(submissions []model.Submission, max int) []string {
	if max <= 0 {
		max = defaultMaxDesired
	}

	counts := map[string]int{}
	for _, s := range submissions {
		if len(s.RankedItems) == 0 {
			continue
		}
		counts[s.RankedItems[0]]++
	}
	return topKeys(counts, max)
}

// ItemsFromPopularCentros returns every item belonging to the centros that
// collect the most first preferences. Used to seed "what if the popular
// centers fill up" explorations.
func ItemsFromPopularCentros(submissions []model.Submission, catalog []model.Item, maxCentros int) []string {
	if maxCentros <= 0 {
		maxCentros = defaultMaxCentros
	}

	byID := make(map[string]model.Item, len(catalog))
	byCentro := map[string][]string{}
	for _, it := range catalog {
		byID[it.ID] = it
		if it.Centro != "" {
			byCentro[it.Centro] = append(byCentro[it.Centro], it.ID)
		}
	}

	firstPrefs := map[string]int{}
	for _, s := range submissions {
		if len(s.RankedItems) == 0 {
			continue
		}
		if it, ok := byID[s.RankedItems[0]]; ok && it.Centro != "" {
			firstPrefs[it.Centro]++
		}
	}

	var out []string
	for _, centro := range topKeys(firstPrefs, maxCentros) {
		out = append(out, byCentro[centro]...)
	}
	return out
}

// topKeys returns up to max keys ordered by descending count, then key.
func topKeys(counts map[string]int, max int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > max {
		keys = keys[:max]
	}
	return keys
}

func toSet(vs []string) map[string]bool {
	if len(vs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(vs))
	for _, v := range vs {
		set[v] = true
	}
	return set
}
