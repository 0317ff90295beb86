// Package synth fabricates plausible submissions for priority slots that
// have no real submission yet, so the "remaining users respond" simulation
// reflects real demand instead of noise.
package synth

import (
	"math"
	"sort"

	"github.com/mvidal/destino/internal/domain/model"
)

// Pattern analysis constants. Earlier-ranked items weigh more; each bucket
// keeps only its most popular IDs.
const (
	maxPositionWeight = 10
	popularSetSize    = 100
)

// orderBucket groups users whose priority order falls in [min, max].
type orderBucket struct {
	name string
	min  int
	max  int
}

// Buckets capture the distinct behavior of early vs. late submitters.
var orderBuckets = []orderBucket{
	{name: "top50", min: 1, max: 50},
	{name: "orders51_100", min: 51, max: 100},
	{name: "orders101_200", min: 101, max: 200},
	{name: "orders201_300", min: 201, max: 300},
	{name: "orders301_plus", min: 301, max: math.MaxInt},
}

// Patterns holds, per order bucket, the item IDs real users in that bucket
// want most, best first.
type Patterns map[string][]string

// AnalyzePatterns builds a preference-popularity profile from real
// submissions: per bucket, every ranked item contributes a weight that
// decays with its position, and the heaviest IDs form the bucket's popular
// set.
func AnalyzePatterns(submissions []model.Submission) Patterns {
	patterns := make(Patterns, len(orderBuckets))

	for _, b := range orderBuckets {
		weights := map[string]float64{}
		for _, s := range submissions {
			if s.Order < b.min || s.Order > b.max {
				continue
			}
			for pos, id := range s.RankedItems {
				w := float64(maxPositionWeight - pos)
				if w <= 0 {
					continue
				}
				weights[id] += w
			}
		}
		if len(weights) == 0 {
			continue
		}

		ids := make([]string, 0, len(weights))
		for id := range weights {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if weights[ids[i]] != weights[ids[j]] {
				return weights[ids[i]] > weights[ids[j]]
			}
			return ids[i] < ids[j]
		})
		if len(ids) > popularSetSize {
			ids = ids[:popularSetSize]
		}
		patterns[b.name] = ids
	}

	return patterns
}

// ForOrder returns the popular set of the bucket the given priority order
// falls into. May be empty when no real user in that bucket has submitted.
func (p Patterns) ForOrder(order int) []string {
	for _, b := range orderBuckets {
		if order >= b.min && order <= b.max {
			return p[b.name]
		}
	}
	// Orders at or below zero fall through; treat them as early submitters.
	return p[orderBuckets[0].name]
}
