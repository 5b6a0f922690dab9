package services

import (
	"math/rand/v2"
	"testing"

	"lms/backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pool builds perLevel[i] questions for level i+1.
func pool(perLevel ...int) []repository.BankQuestion {
	var out []repository.BankQuestion
	id := uint(1)
	for i, n := range perLevel {
		for j := 0; j < n; j++ {
			out = append(out, repository.BankQuestion{ID: id, LevelID: uint(i + 1), LevelRank: i + 1})
			id++
		}
	}
	return out
}

func levelCounts(qs []repository.BankQuestion) map[uint]int {
	counts := make(map[uint]int)
	for _, q := range qs {
		counts[q.LevelID]++
	}
	return counts
}

func assertUnique(t *testing.T, qs []repository.BankQuestion) {
	t.Helper()
	seen := make(map[uint]bool)
	for _, q := range qs {
		assert.False(t, seen[q.ID], "question %d drawn twice", q.ID)
		seen[q.ID] = true
	}
}

func TestSampleFiveLevels(t *testing.T) {
	s := NewSampler(10, 2)
	for i := 0; i < 200; i++ {
		got := s.Sample(pool(6, 5, 8, 4, 7))
		require.Len(t, got, 10)
		assertUnique(t, got)
		for level, n := range levelCounts(got) {
			assert.Equal(t, 2, n, "level %d", level)
		}
	}
}

func TestSampleFillsFromPool(t *testing.T) {
	s := NewSampler(10, 2)
	for i := 0; i < 200; i++ {
		// level 1 holds one question, so five stratified picks and five fills
		got := s.Sample(pool(1, 9, 4))
		require.Len(t, got, 10)
		assertUnique(t, got)
		counts := levelCounts(got)
		assert.Equal(t, 1, counts[1])
		assert.GreaterOrEqual(t, counts[2], 2)
		assert.GreaterOrEqual(t, counts[3], 2)
	}
}

func TestSampleCapsManyLevels(t *testing.T) {
	s := NewSampler(10, 2)
	for i := 0; i < 200; i++ {
		got := s.Sample(pool(3, 3, 3, 3, 3, 3, 3))
		require.Len(t, got, 10)
		assertUnique(t, got)
		counts := levelCounts(got)
		assert.Len(t, counts, 7, "every level is represented")
		for _, n := range counts {
			assert.LessOrEqual(t, n, 2)
		}
	}
}

func TestSampleSmallPoolReturnsEverything(t *testing.T) {
	s := NewSampler(10, 2)
	in := pool(3, 1, 2)
	got := s.Sample(in)
	assert.ElementsMatch(t, in, got)

	assert.Empty(t, s.Sample(nil))
}

func TestSampleIsNotFixed(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	s := &Sampler{Size: 10, PerLevel: 2, Shuffle: r.Shuffle}
	in := pool(20, 20, 20, 20, 20)

	distinct := make(map[uint]bool)
	for i := 0; i < 50; i++ {
		for _, q := range s.Sample(in) {
			distinct[q.ID] = true
		}
	}
	assert.Greater(t, len(distinct), 50)
}
