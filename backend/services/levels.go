package services

import (
	"fmt"
	"sort"

	"lms/backend/models"
)

type LevelScore struct {
	LevelID      uint    `json:"level_id"`
	LevelName    string  `json:"level_name"`
	Rank         int     `json:"rank"`
	Correct      int     `json:"correct"`
	Total        int     `json:"total"`
	ScorePercent float64 `json:"score_percent"`
	Achieved     bool    `json:"achieved"`
}

// ResolveLevel walks levels in ascending rank and credits the longest prefix
// scoring at least threshold. A level without answered questions scores 0
// and ends the prefix. The lowest level is the floor.
func ResolveLevel(levels []models.Level, tallies map[uint]LevelTally, threshold float64) (models.Level, []LevelScore, error) {
	if len(levels) == 0 {
		return models.Level{}, nil, fmt.Errorf("no levels configured: %w", ErrNotFound)
	}

	ordered := append([]models.Level(nil), levels...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })

	resolved := ordered[0]
	scores := make([]LevelScore, 0, len(ordered))
	inPrefix := true
	for _, level := range ordered {
		tally := tallies[level.ID]
		score := LevelScore{
			LevelID:      level.ID,
			LevelName:    level.Name,
			Rank:         level.Rank,
			Correct:      tally.Correct,
			Total:        tally.Total,
			ScorePercent: Percent(tally.Correct, tally.Total),
		}
		if inPrefix && tally.Total > 0 && score.ScorePercent >= threshold {
			score.Achieved = true
			resolved = level
		} else {
			inPrefix = false
		}
		scores = append(scores, score)
	}

	return resolved, scores, nil
}
