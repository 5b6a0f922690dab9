package services

import (
	"fmt"

	"lms/backend/repository"
)

type Answer struct {
	QuestionID       uint `json:"question_id"`
	SelectedOptionID uint `json:"selected_option_id"`
}

// ValidateAnswers rejects empty submissions, entries without ids and
// repeated questions.
func ValidateAnswers(answers []Answer) error {
	if len(answers) == 0 {
		return fmt.Errorf("no answers provided: %w", ErrInvalidInput)
	}
	seen := make(map[uint]struct{}, len(answers))
	for i, a := range answers {
		if a.QuestionID == 0 || a.SelectedOptionID == 0 {
			return fmt.Errorf("answer %d: question_id and selected_option_id are required: %w", i, ErrInvalidInput)
		}
		if _, dup := seen[a.QuestionID]; dup {
			return fmt.Errorf("answer %d: question %d answered twice: %w", i, a.QuestionID, ErrInvalidInput)
		}
		seen[a.QuestionID] = struct{}{}
	}
	return nil
}

type LevelTally struct {
	Correct int
	Total   int
}

type ScoreResult struct {
	Correct int
	// Total counts only answers whose question resolved against the key.
	Total   int
	ByLevel map[uint]LevelTally
}

func (r ScoreResult) Percent() float64 {
	return Percent(r.Correct, r.Total)
}

func Percent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Score grades answers against the authoritative key. Questions missing from
// the key are skipped; a question without an authored answer counts as wrong.
func Score(answers []Answer, keys map[uint]repository.AnswerKey) ScoreResult {
	result := ScoreResult{ByLevel: make(map[uint]LevelTally)}
	for _, a := range answers {
		key, ok := keys[a.QuestionID]
		if !ok {
			continue
		}
		tally := result.ByLevel[key.LevelID]
		tally.Total++
		result.Total++
		if key.CorrectOptionID != nil && a.SelectedOptionID == *key.CorrectOptionID {
			tally.Correct++
			result.Correct++
		}
		result.ByLevel[key.LevelID] = tally
	}
	return result
}
