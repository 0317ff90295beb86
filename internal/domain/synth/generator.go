package synth

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/mvidal/destino/internal/domain/model"
)

// Generation constants, tuned against real seasons: synthetic users share
// most of their bucket's popular set, wander into numerically neighboring
// items occasionally, and fill the rest with arbitrary catalog-shaped IDs.
const (
	baseShareMin   = 0.70 // fraction of the popular set every synthetic user samples, at least
	baseShareSpan  = 0.15 // sampled share is baseShareMin + rand*baseShareSpan
	neighborMin    = 2    // numeric-neighborhood radius lower bound
	neighborSpan   = 3    // radius is neighborMin + rand(neighborSpan)
	neighborChance = 0.25
	minListLength  = 15
	randomIDSpace  = 700 // synthetic filler IDs are drawn from [1, randomIDSpace]
	maxDistinct    = 600 // stop padding once this many distinct IDs accumulated
	staggerMS      = 1000
)

// Generator fabricates submissions for missing priority orders.
//
// Generation is intentionally random: two calls for the same season produce
// different preference lists. Callers needing repeatability inject a seeded
// source via WithRand.
type Generator struct {
	rng *rand.Rand
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRand sets the random source. Tests pass a seeded one.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// NewGenerator creates a Generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FillMissing returns the real submissions merged with synthetic ones for
// every priority order in [1, targetOrder) that no real user occupies,
// sorted into processing order. When nothing is missing the input slice is
// returned unchanged.
func (g *Generator) FillMissing(real []model.Submission, targetOrder int) []model.Submission {
	missing := missingOrders(real, targetOrder)
	if len(missing) == 0 {
		return real
	}

	patterns := AnalyzePatterns(real)
	base := earliestSubmittedAt(real)

	merged := make([]model.Submission, 0, len(real)+len(missing))
	merged = append(merged, real...)
	for _, order := range missing {
		merged = append(merged, g.synthesize(order, patterns, base))
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Before(merged[j]) })
	return merged
}

// missingOrders lists the integers in [1, targetOrder) absent from the real
// submissions' order values, ascending.
func missingOrders(real []model.Submission, targetOrder int) []int {
	present := make(map[int]bool, len(real))
	for _, s := range real {
		present[s.Order] = true
	}

	var missing []int
	for order := 1; order < targetOrder; order++ {
		if !present[order] {
			missing = append(missing, order)
		}
	}
	return missing
}

// synthesize builds one synthetic submission for the given priority order.
func (g *Generator) synthesize(order int, patterns Patterns, baseTS int64) model.Submission {
	return model.Submission{
		ID:          fmt.Sprintf("fake_%d", order),
		Name:        fmt.Sprintf("Usuario %d", order),
		Order:       order,
		RankedItems: g.preferenceList(order, patterns.ForOrder(order)),
		SubmittedAt: baseTS - int64(order)*staggerMS,
		IsSynthetic: true,
	}
}

// preferenceList assembles a plausible ranking: a large shuffled share of
// the bucket's popular set, occasional numeric neighbors of those picks,
// then random filler up to max(order, minListLength), truncated to the
// order value (later submitters rank longer lists).
func (g *Generator) preferenceList(order int, popular []string) []string {
	used := map[string]bool{}
	var list []string

	add := func(id string) {
		if id == "" || used[id] {
			return
		}
		used[id] = true
		list = append(list, id)
	}

	// Majority of the popular set, in random order.
	share := baseShareMin + g.rng.Float64()*baseShareSpan
	shuffled := append([]string(nil), popular...)
	g.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	take := int(float64(len(popular)) * share)
	for _, id := range shuffled[:min(take, len(shuffled))] {
		add(id)
	}

	// "Similar but not identical" picks: numeric neighbors of the base items.
	var variants []string
	for _, id := range list {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		radius := neighborMin + g.rng.Intn(neighborSpan)
		for v := max(1, n-radius); v <= n+radius; v++ {
			vid := strconv.Itoa(v)
			if !used[vid] && g.rng.Float64() < neighborChance {
				used[vid] = true
				variants = append(variants, vid)
			}
		}
	}
	g.rng.Shuffle(len(variants), func(i, j int) { variants[i], variants[j] = variants[j], variants[i] })
	list = append(list, variants...)

	// Random filler until the target length, with a hard distinct-ID brake.
	target := max(order, minListLength)
	for len(list) < target && len(used) <= maxDistinct {
		id := strconv.Itoa(g.rng.Intn(randomIDSpace) + 1)
		if !used[id] {
			used[id] = true
			list = append(list, id)
		}
	}

	// Sequential fallback for pathological targets near the ID space size.
	for next := 1; len(list) < target && next <= randomIDSpace; next++ {
		add(strconv.Itoa(next))
	}

	g.rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	if order > 0 && len(list) > order {
		list = list[:order]
	}
	return list
}

// earliestSubmittedAt anchors synthetic timestamps just before the oldest
// real submission so ties never favor a fabricated user.
func earliestSubmittedAt(real []model.Submission) int64 {
	if len(real) == 0 {
		return time.Now().UnixMilli()
	}
	earliest := real[0].SubmittedAt
	for _, s := range real[1:] {
		if s.SubmittedAt < earliest {
			earliest = s.SubmittedAt
		}
	}
	return earliest
}
