package services

import (
	"math/rand/v2"
	"sort"

	"lms/backend/repository"
)

// Sampler draws a level-balanced entrance test from a question pool.
type Sampler struct {
	Size     int
	PerLevel int
	// Shuffle defaults to the concurrency-safe global source.
	Shuffle func(n int, swap func(i, j int))
}

func NewSampler(size, perLevel int) *Sampler {
	return &Sampler{Size: size, PerLevel: perLevel, Shuffle: rand.Shuffle}
}

// Sample takes up to PerLevel questions from every level, one round at a
// time so the Size cap never starves a level, then fills the remainder from
// the rest of the pool. Pools no larger than Size are returned whole.
func (s *Sampler) Sample(pool []repository.BankQuestion) []repository.BankQuestion {
	if len(pool) <= s.Size {
		out := append([]repository.BankQuestion(nil), pool...)
		s.shuffle(out)
		return out
	}

	groups := make(map[uint][]int)
	ranks := make(map[uint]int)
	for i, q := range pool {
		groups[q.LevelID] = append(groups[q.LevelID], i)
		ranks[q.LevelID] = q.LevelRank
	}
	levels := make([]uint, 0, len(groups))
	for id := range groups {
		levels = append(levels, id)
	}
	sort.Slice(levels, func(i, j int) bool {
		if ranks[levels[i]] != ranks[levels[j]] {
			return ranks[levels[i]] < ranks[levels[j]]
		}
		return levels[i] < levels[j]
	})
	s.Shuffle(len(levels), func(i, j int) { levels[i], levels[j] = levels[j], levels[i] })
	for _, id := range levels {
		g := groups[id]
		s.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
	}

	selected := make([]repository.BankQuestion, 0, s.Size)
	picked := make(map[int]bool, s.Size)
	for round := 0; round < s.PerLevel && len(selected) < s.Size; round++ {
		for _, id := range levels {
			if len(selected) == s.Size {
				break
			}
			if g := groups[id]; round < len(g) {
				selected = append(selected, pool[g[round]])
				picked[g[round]] = true
			}
		}
	}

	rest := make([]int, 0, len(pool)-len(selected))
	for i := range pool {
		if !picked[i] {
			rest = append(rest, i)
		}
	}
	s.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	for _, i := range rest {
		if len(selected) == s.Size {
			break
		}
		selected = append(selected, pool[i])
	}

	s.shuffle(selected)
	return selected
}

func (s *Sampler) shuffle(qs []repository.BankQuestion) {
	s.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}
