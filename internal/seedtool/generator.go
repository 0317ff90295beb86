package seedtool

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

// Popularity skew: this share of users rank their picks from the popular
// head of the destination pool before falling back to the long tail.
const (
	popularHeadShare   = 0.3
	popularPickChance  = 0.7
	randomFloatDivisor = 1000000
)

var firstNames = []string{
	"Ana", "Luis", "Marta", "Pablo", "Lucía", "Javier", "Carmen", "Diego",
	"Elena", "Sergio", "Nuria", "Andrés", "Isabel", "Raúl", "Beatriz",
}

var lastNames = []string{
	"García", "Martínez", "López", "Sánchez", "Pérez", "Gómez", "Fernández",
	"Díaz", "Ruiz", "Moreno", "Jiménez", "Navarro",
}

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func randomName() string {
	return firstNames[randomInt(len(firstNames))] + " " + lastNames[randomInt(len(lastNames))]
}

// destinationPool builds the IDs users can rank. IDs are plain numbers
// rendered as strings, like real catalog identifiers.
func destinationPool(size int) []string {
	pool := make([]string, size)
	for i := range pool {
		pool[i] = strconv.Itoa(1000 + i)
	}
	return pool
}

// rankedPicks draws a preference list without duplicates. Most picks come
// from the popular head of the pool so destinations contest realistically.
func rankedPicks(pool []string, maxPrefs int) []string {
	count := 1 + randomInt(maxPrefs)
	head := int(float64(len(pool)) * popularHeadShare)
	if head < 1 {
		head = 1
	}

	seen := make(map[string]bool, count)
	picks := make([]string, 0, count)
	for len(picks) < count && len(seen) < len(pool) {
		var id string
		if randomFloat() < popularPickChance {
			id = pool[randomInt(head)]
		} else {
			id = pool[randomInt(len(pool))]
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		picks = append(picks, id)
	}
	return picks
}

// generate builds the submissions for a run. Orders start at 1 and, when
// gaps are enabled, skip slots so the remaining-users scenario has holes
// to fill.
func generate(cfg *Config) []submission {
	pool := destinationPool(cfg.PoolSize)
	subs := make([]submission, 0, cfg.NumUsers)

	order := 0
	for i := 0; i < cfg.NumUsers; i++ {
		order++
		if cfg.Gaps && randomFloat() < 0.25 {
			order += 1 + randomInt(3)
		}
		subs = append(subs, submission{
			Season:      cfg.Season,
			UserID:      "seed_" + uuid.New().String(),
			Name:        randomName(),
			Order:       order,
			RankedItems: rankedPicks(pool, cfg.MaxPrefs),
		})
	}
	return subs
}
