package services

import (
	"context"
	"fmt"
	"log/slog"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/repository"

	"gorm.io/gorm"
)

const (
	StatusModules   = "modules"
	StatusTest      = "test"
	StatusCompleted = "completed"
)

type ModuleSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LevelID     uint   `json:"level_id"`
}

type EntranceOption struct {
	OptionID   uint   `json:"option_id"`
	OptionText string `json:"option_text"`
}

// EntranceQuestion never carries the answer; grading happens server side.
type EntranceQuestion struct {
	QuestionID   uint             `json:"question_id"`
	QuestionName string           `json:"question_name"`
	TopicID      uint             `json:"topic_id"`
	TopicName    string           `json:"topic_name"`
	LevelID      uint             `json:"level_id"`
	Options      []EntranceOption `json:"options"`
}

type EntranceTest struct {
	Status    string             `json:"status"`
	Modules   []ModuleSummary    `json:"modules,omitempty"`
	Questions []EntranceQuestion `json:"questions,omitempty"`
}

type LevelView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

func newLevelView(l models.Level) LevelView {
	return LevelView{ID: l.ID, Name: l.Name, Rank: l.Rank}
}

type EntranceResult struct {
	Status          string       `json:"status"`
	ScorePercent    float64      `json:"score_percent"`
	CorrectCount    int          `json:"correct_count"`
	TotalQuestions  int          `json:"total_questions"`
	LevelScores     []LevelScore `json:"level_scores"`
	Level           LevelView    `json:"level"`
	ModulesAssigned []uint       `json:"modules_assigned"`
}

type EntranceService struct {
	DB               *gorm.DB
	Questions        *repository.QuestionRepository
	Sampler          *Sampler
	PassThreshold    float64
	EntranceModuleID uint
	Logger           *slog.Logger
}

func NewEntranceService(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *EntranceService {
	return &EntranceService{
		DB:               db,
		Questions:        repository.NewQuestionRepository(db),
		Sampler:          NewSampler(cfg.EntranceTestSize, cfg.EntrancePerLevel),
		PassThreshold:    cfg.PassThreshold,
		EntranceModuleID: cfg.EntranceModuleID,
		Logger:           logger,
	}
}

// GetEntranceTest returns the module list once the user has taken the
// entrance test, and a freshly sampled test otherwise.
func (s *EntranceService) GetEntranceTest(ctx context.Context, userID uint) (EntranceTest, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return EntranceTest{}, storeError(fmt.Sprintf("load user %d", userID), err)
	}

	if user.EntranceTest {
		var modules []models.Module
		err := s.DB.WithContext(ctx).
			Joins("JOIN levels ON levels.id = modules.level_id").
			Where("modules.id <> ?", s.EntranceModuleID).
			Order("levels.rank ASC, modules.id ASC").
			Find(&modules).Error
		if err != nil {
			return EntranceTest{}, storeError("list modules", err)
		}
		summaries := make([]ModuleSummary, 0, len(modules))
		for _, m := range modules {
			summaries = append(summaries, ModuleSummary{ID: m.ID, Name: m.Name, Description: m.Description, LevelID: m.LevelID})
		}
		return EntranceTest{Status: StatusModules, Modules: summaries}, nil
	}

	_, pool, err := s.Questions.ModuleQuestions(ctx, s.EntranceModuleID)
	if err != nil {
		return EntranceTest{}, storeError("load entrance test", err)
	}

	sample := s.Sampler.Sample(pool)
	questions := make([]EntranceQuestion, 0, len(sample))
	for _, q := range sample {
		options := make([]EntranceOption, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, EntranceOption{OptionID: o.ID, OptionText: o.Text})
		}
		questions = append(questions, EntranceQuestion{
			QuestionID:   q.ID,
			QuestionName: q.Name,
			TopicID:      q.TopicID,
			TopicName:    q.TopicName,
			LevelID:      q.LevelID,
			Options:      options,
		})
	}
	return EntranceTest{Status: StatusTest, Questions: questions}, nil
}

// SubmitEntranceTest grades the entrance answers, resolves the user's level
// and enrolls the user into that level's modules.
func (s *EntranceService) SubmitEntranceTest(ctx context.Context, userID uint, answers []Answer) (EntranceResult, error) {
	if err := ValidateAnswers(answers); err != nil {
		return EntranceResult{}, err
	}

	test, err := s.Questions.TestForModule(ctx, s.EntranceModuleID)
	if err != nil {
		return EntranceResult{}, storeError("load entrance test", err)
	}
	keys, err := s.Questions.AnswerKeys(ctx, test.ID)
	if err != nil {
		return EntranceResult{}, storeError("load answer keys", err)
	}
	levels, err := s.Questions.Levels(ctx)
	if err != nil {
		return EntranceResult{}, storeError("load levels", err)
	}

	score := Score(answers, keys)
	resolved, levelScores, err := ResolveLevel(levels, score.ByLevel, s.PassThreshold)
	if err != nil {
		return EntranceResult{}, err
	}

	var assigned []uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		err = tx.Model(&user).Updates(map[string]interface{}{
			"level_id":      resolved.ID,
			"entrance_test": true,
		}).Error
		if err != nil {
			return err
		}
		assigned, err = enrollLevelModules(tx, userID, resolved.ID, s.EntranceModuleID)
		return err
	})
	if err != nil {
		err = storeError("apply entrance result", err)
		s.Logger.Error("entrance submission failed", "user_id", userID, "error", err)
		return EntranceResult{}, err
	}

	if assigned == nil {
		assigned = []uint{}
	}
	s.Logger.Info("entrance test submitted",
		"user_id", userID,
		"correct", score.Correct,
		"total", score.Total,
		"level_id", resolved.ID,
		"modules_assigned", len(assigned),
	)

	return EntranceResult{
		Status:          StatusCompleted,
		ScorePercent:    score.Percent(),
		CorrectCount:    score.Correct,
		TotalQuestions:  score.Total,
		LevelScores:     levelScores,
		Level:           newLevelView(resolved),
		ModulesAssigned: assigned,
	}, nil
}
