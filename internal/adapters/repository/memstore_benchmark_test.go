package repository_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	repository "github.com/mvidal/destino/internal/adapters/repository"
	"github.com/mvidal/destino/internal/domain/model"
)

func seedStore(b *testing.B, n int) *repository.MemStore {
	b.Helper()
	ctx := context.Background()
	s := repository.NewMemStore(ctx)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		s.Upsert(ctx, "2026", model.Submission{
			ID:          fmt.Sprintf("u%d", i),
			Order:       rng.Intn(n) + 1,
			RankedItems: []string{"A", "B", "C"},
			SubmittedAt: int64(i),
		})
	}
	return s
}

func BenchmarkMemStoreUpsert(b *testing.B) {
	ctx := context.Background()
	s := seedStore(b, 10_000)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Upsert(ctx, "2026", model.Submission{
			ID:          fmt.Sprintf("u%d", i%10_000),
			Order:       i%500 + 1,
			RankedItems: []string{"A", "B"},
			SubmittedAt: int64(i),
		})
	}
}

func BenchmarkMemStoreSeasonRead(b *testing.B) {
	ctx := context.Background()
	s := seedStore(b, 10_000)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SeasonSubmissions(ctx, "2026"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemStoreSubmissionsAbove(b *testing.B) {
	ctx := context.Background()
	s := seedStore(b, 10_000)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SubmissionsAbove(ctx, "2026", 250); err != nil {
			b.Fatal(err)
		}
	}
}
