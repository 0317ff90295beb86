// Package repository defines the submission store interface and errors.
package repository

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: order ASC, then submittedAt ASC, then userID ASC (deterministic).
// In-order traversal produces the allocation processing order, so season
// reads never need an extra sort.

// treap node
type node struct {
	id          string
	order       int
	submittedAt int64
	prio        uint64
	left        *node
	right       *node
	size        int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aOrder, aAt, aID) should be processed before
// (bOrder, bAt, bID) in the allocation pass.
func less(aOrder int, aAt int64, aID string, bOrder int, bAt int64, bID string) bool {
	if aOrder != bOrder {
		return aOrder < bOrder // lower order number means higher priority
	}
	if aAt != bAt {
		return aAt < bAt // earlier submission wins ties
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, order int, submittedAt int64, prio uint64) *node {
	if n == nil {
		return &node{id: id, order: order, submittedAt: submittedAt, prio: prio, size: 1}
	}
	if less(order, submittedAt, id, n.order, n.submittedAt, n.id) {
		n.left = insert(n.left, id, order, submittedAt, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, order, submittedAt, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, order int, submittedAt int64) *node {
	if n == nil {
		return nil
	}
	if order == n.order && submittedAt == n.submittedAt && id == n.id {
		// Merge children by rotating the highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, order, submittedAt)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, order, submittedAt)
		}
	} else if less(order, submittedAt, id, n.order, n.submittedAt, n.id) {
		n.left = deleteNode(n.left, id, order, submittedAt)
	} else {
		n.right = deleteNode(n.right, id, order, submittedAt)
	}
	fix(n)
	return n
}

// collectWhile appends submissions in processing order while keep returns
// true, stopping the traversal at the first rejected node.
func collectWhile(n *node, byID map[string]model.Submission, keep func(*node) bool, out *[]model.Submission) bool {
	if n == nil {
		return true
	}
	if !collectWhile(n.left, byID, keep, out) {
		return false
	}
	if !keep(n) {
		return false
	}
	if sub, ok := byID[n.id]; ok {
		*out = append(*out, sub)
	}
	return collectWhile(n.right, byID, keep, out)
}

// seasonTree holds one season's submissions.
type seasonTree struct {
	root *node
	byID map[string]model.Submission
}

// MemStore is an in-memory Store keeping one treap per season.
type MemStore struct {
	mu      sync.RWMutex
	seasons map[string]*seasonTree
	rng     *rand.Rand

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemStore constructs an in-memory store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		seasons:               make(map[string]*seasonTree),
		rng:                   rand.New(rand.NewSource(time.Now().UnixNano())),
		metricsUpdateInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Close gracefully shuts down the background metrics goroutine.
func (s *MemStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *MemStore) Upsert(ctx context.Context, season string, sub model.Submission) (model.Submission, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if season == "" {
		metrics.RecordErrorByComponent("repository", "empty_season")
		return model.Submission{}, ErrEmptySeason
	}
	if sub.ID == "" {
		metrics.RecordErrorByComponent("repository", "empty_user_id")
		return model.Submission{}, ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.seasons[season]
	if !ok {
		tree = &seasonTree{byID: make(map[string]model.Submission)}
		s.seasons[season] = tree
	}

	if old, exists := tree.byID[sub.ID]; exists {
		// Re-submitting keeps the original timestamp so priority ties
		// are decided by the first submission, not the latest edit.
		sub.SubmittedAt = old.SubmittedAt
		tree.root = deleteNode(tree.root, old.ID, old.Order, old.SubmittedAt)
	}
	tree.byID[sub.ID] = sub
	tree.root = insert(tree.root, sub.ID, sub.Order, sub.SubmittedAt, s.rng.Uint64())

	return sub, nil
}

// Submission returns a single user's submission in O(1).
func (s *MemStore) Submission(ctx context.Context, season, userID string) (model.Submission, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if tree, ok := s.seasons[season]; ok {
		if sub, exists := tree.byID[userID]; exists {
			return sub, nil
		}
	}
	metrics.RecordErrorByComponent("repository", "not_found")
	return model.Submission{}, ErrNotFound
}

// SeasonSubmissions returns the season's submissions in processing order.
func (s *MemStore) SeasonSubmissions(ctx context.Context, season string) ([]model.Submission, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.seasons[season]
	if !ok {
		return nil, nil
	}

	out := make([]model.Submission, 0, len(tree.byID))
	collectWhile(tree.root, tree.byID, func(*node) bool { return true }, &out)
	return out, nil
}

// SubmissionsAbove returns submissions with a strictly lower order value.
func (s *MemStore) SubmissionsAbove(ctx context.Context, season string, order int) ([]model.Submission, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.seasons[season]
	if !ok {
		return nil, nil
	}

	var out []model.Submission
	collectWhile(tree.root, tree.byID, func(n *node) bool { return n.order < order }, &out)
	return out, nil
}

// Orders returns the claimed order numbers for a season, ascending.
func (s *MemStore) Orders(ctx context.Context, season string) ([]model.OrderEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.seasons[season]
	if !ok {
		return nil, nil
	}

	out := make([]model.OrderEntry, 0, len(tree.byID))
	for _, sub := range tree.byID {
		out = append(out, model.OrderEntry{ID: sub.ID, Order: sub.Order, Name: sub.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a user's submission from a season.
func (s *MemStore) Delete(ctx context.Context, season, userID string) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.seasons[season]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}
	sub, exists := tree.byID[userID]
	if !exists {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}
	tree.root = deleteNode(tree.root, sub.ID, sub.Order, sub.SubmittedAt)
	delete(tree.byID, userID)
	if len(tree.byID) == 0 {
		delete(s.seasons, season)
	}
	return nil
}

// DeleteAllForUser removes a user's submissions from every season.
func (s *MemStore) DeleteAllForUser(ctx context.Context, userID string) ([]string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var touched []string
	for season, tree := range s.seasons {
		sub, exists := tree.byID[userID]
		if !exists {
			continue
		}
		tree.root = deleteNode(tree.root, sub.ID, sub.Order, sub.SubmittedAt)
		delete(tree.byID, userID)
		if len(tree.byID) == 0 {
			delete(s.seasons, season)
		}
		touched = append(touched, season)
	}
	sort.Strings(touched)
	return touched, nil
}

// Count returns the number of submissions tracked for a season.
func (s *MemStore) Count(ctx context.Context, season string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tree, ok := s.seasons[season]; ok {
		return len(tree.byID)
	}
	return 0
}

// Seasons returns the seasons that currently hold submissions, sorted.
func (s *MemStore) Seasons(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.seasons))
	for season := range s.seasons {
		out = append(out, season)
	}
	sort.Strings(out)
	return out
}

// startMetricsUpdater starts a background goroutine that updates store metrics.
func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics updates store-level gauges.
func (s *MemStore) updateMetrics() {
	s.mu.RLock()
	total := 0
	for season, tree := range s.seasons {
		total += len(tree.byID)
		metrics.UpdateStoreSubmissionsPerSeason(season, len(tree.byID))
	}
	seasonCount := len(s.seasons)
	s.mu.RUnlock()

	metrics.UpdateStoreSubmissionsTotal(total)
	metrics.UpdateStoreSeasonCount(seasonCount)
}
