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

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type ModuleTestQuestion struct {
	ID              uint         `json:"id"`
	Name            string       `json:"name"`
	Topic           string       `json:"topic"`
	Options         []OptionView `json:"options"`
	CorrectAnswerID *uint        `json:"correct_answer_id"`
}

type ModuleTestView struct {
	ID        uint                 `json:"id"`
	Name      string               `json:"name"`
	Questions []ModuleTestQuestion `json:"questions"`
}

// AssembleModuleTest shapes the full, unsampled question set of a test.
func AssembleModuleTest(test models.Test, questions []repository.BankQuestion) ModuleTestView {
	view := ModuleTestView{ID: test.ID, Name: test.Name, Questions: make([]ModuleTestQuestion, 0, len(questions))}
	for _, q := range questions {
		options := make([]OptionView, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, OptionView{ID: o.ID, Text: o.Text})
		}
		view.Questions = append(view.Questions, ModuleTestQuestion{
			ID:              q.ID,
			Name:            q.Name,
			Topic:           q.TopicName,
			Options:         options,
			CorrectAnswerID: q.CorrectOptionID,
		})
	}
	return view
}

type ModuleTestResult struct {
	ScorePercent         float64    `json:"score_percent"`
	CorrectCount         int        `json:"correct_count"`
	TotalQuestions       int        `json:"total_questions"`
	IsPassed             bool       `json:"is_passed"`
	Attempts             int        `json:"attempts"`
	CompletionPercentage float64    `json:"completion_percentage"`
	IsCompleteCourse     bool       `json:"is_complete_course"`
	PromotedTo           *LevelView `json:"promoted_to,omitempty"`
}

type TopicView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TestProgressView struct {
	TestID         uint   `json:"test_id"`
	TestName       string `json:"test_name,omitempty"`
	ModuleID       uint   `json:"module_id,omitempty"`
	ModuleName     string `json:"module_name,omitempty"`
	Attempts       int    `json:"attempts"`
	CorrectAnswers int    `json:"correct_answers"`
	IsPassed       bool   `json:"is_passed"`
}

type UserModuleView struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	LevelID     uint              `json:"level_id"`
	Topics      []TopicView       `json:"topics"`
	TestID      *uint             `json:"test_id"`
	Progress    *TestProgressView `json:"progress"`
}

type ProgressView struct {
	PassedTests          int                `json:"passed_tests"`
	CompletionPercentage float64            `json:"completion_percentage"`
	IsComplete           bool               `json:"is_complete"`
	Tests                []TestProgressView `json:"tests"`
}

type ModuleTestService struct {
	DB               *gorm.DB
	Questions        *repository.QuestionRepository
	Tracker          *Tracker
	EntranceModuleID uint
	Logger           *slog.Logger
}

func NewModuleTestService(db *gorm.DB, tracker *Tracker, cfg *config.Config, logger *slog.Logger) *ModuleTestService {
	return &ModuleTestService{
		DB:               db,
		Questions:        repository.NewQuestionRepository(db),
		Tracker:          tracker,
		EntranceModuleID: cfg.EntranceModuleID,
		Logger:           logger,
	}
}

// moduleTest resolves the test of a curriculum module. The entrance module
// is not a curriculum module and is reported as missing.
func (s *ModuleTestService) moduleTest(ctx context.Context, moduleID uint) (models.Test, error) {
	if moduleID == s.EntranceModuleID {
		return models.Test{}, fmt.Errorf("module %d has no test: %w", moduleID, ErrNotFound)
	}
	test, err := s.Questions.TestForModule(ctx, moduleID)
	if err != nil {
		return models.Test{}, storeError(fmt.Sprintf("load test of module %d", moduleID), err)
	}
	return test, nil
}

func (s *ModuleTestService) GetModuleTest(ctx context.Context, moduleID uint) (ModuleTestView, error) {
	if moduleID == s.EntranceModuleID {
		return ModuleTestView{}, fmt.Errorf("module %d has no test: %w", moduleID, ErrNotFound)
	}
	test, questions, err := s.Questions.ModuleQuestions(ctx, moduleID)
	if err != nil {
		return ModuleTestView{}, storeError(fmt.Sprintf("load questions of module %d", moduleID), err)
	}
	return AssembleModuleTest(test, questions), nil
}

// SubmitModuleTest grades a module test attempt and records it.
func (s *ModuleTestService) SubmitModuleTest(ctx context.Context, userID, moduleID uint, answers []Answer) (ModuleTestResult, error) {
	if err := ValidateAnswers(answers); err != nil {
		return ModuleTestResult{}, err
	}

	test, err := s.moduleTest(ctx, moduleID)
	if err != nil {
		return ModuleTestResult{}, err
	}
	keys, err := s.Questions.AnswerKeys(ctx, test.ID)
	if err != nil {
		return ModuleTestResult{}, storeError("load answer keys", err)
	}

	score := Score(answers, keys)
	outcome, err := s.Tracker.Record(ctx, userID, test.ID, score.Correct, score.Total)
	if err != nil {
		s.Logger.Error("module test submission failed", "user_id", userID, "module_id", moduleID, "error", err)
		return ModuleTestResult{}, err
	}

	s.Logger.Info("module test submitted",
		"user_id", userID,
		"module_id", moduleID,
		"test_id", test.ID,
		"correct", score.Correct,
		"total", score.Total,
		"attempts", outcome.Progress.Attempts,
		"passed", outcome.Progress.IsPassed,
	)

	result := ModuleTestResult{
		ScorePercent:         score.Percent(),
		CorrectCount:         score.Correct,
		TotalQuestions:       score.Total,
		IsPassed:             outcome.Progress.IsPassed,
		Attempts:             outcome.Progress.Attempts,
		CompletionPercentage: outcome.Course.CompletionPercentage,
		IsCompleteCourse:     outcome.Course.IsComplete,
	}
	if outcome.PromotedTo != nil {
		level := newLevelView(*outcome.PromotedTo)
		result.PromotedTo = &level
	}
	return result, nil
}

// ListUserModules returns the modules the user is enrolled in, with topics,
// the module test and the user's progress on it.
func (s *ModuleTestService) ListUserModules(ctx context.Context, userID uint) ([]UserModuleView, error) {
	db := s.DB.WithContext(ctx)
	if err := db.Select("id").First(&models.User{}, userID).Error; err != nil {
		return nil, storeError(fmt.Sprintf("load user %d", userID), err)
	}

	var modules []models.Module
	err := db.Joins("JOIN user_modules ON user_modules.module_id = modules.id").
		Where("user_modules.user_id = ?", userID).
		Preload("Topics").
		Order("modules.id").
		Find(&modules).Error
	if err != nil {
		return nil, storeError("list user modules", err)
	}
	views := make([]UserModuleView, 0, len(modules))
	if len(modules) == 0 {
		return views, nil
	}

	moduleIDs := make([]uint, len(modules))
	for i, m := range modules {
		moduleIDs[i] = m.ID
	}
	var tests []models.Test
	if err := db.Where("module_id IN ?", moduleIDs).Find(&tests).Error; err != nil {
		return nil, storeError("list module tests", err)
	}
	testByModule := make(map[uint]models.Test, len(tests))
	testIDs := make([]uint, 0, len(tests))
	for _, t := range tests {
		testByModule[t.ModuleID] = t
		testIDs = append(testIDs, t.ID)
	}

	progressByTest := make(map[uint]models.TestProgress)
	if len(testIDs) > 0 {
		var rows []models.TestProgress
		if err := db.Where("user_id = ? AND test_id IN ?", userID, testIDs).Find(&rows).Error; err != nil {
			return nil, storeError("list test progress", err)
		}
		for _, p := range rows {
			progressByTest[p.TestID] = p
		}
	}

	for _, m := range modules {
		view := UserModuleView{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			LevelID:     m.LevelID,
			Topics:      make([]TopicView, 0, len(m.Topics)),
		}
		for _, t := range m.Topics {
			view.Topics = append(view.Topics, TopicView{ID: t.ID, Name: t.Name, Description: t.Description})
		}
		if test, ok := testByModule[m.ID]; ok {
			id := test.ID
			view.TestID = &id
			if p, ok := progressByTest[test.ID]; ok {
				view.Progress = &TestProgressView{
					TestID:         p.TestID,
					TestName:       test.Name,
					ModuleID:       m.ID,
					ModuleName:     m.Name,
					Attempts:       p.Attempts,
					CorrectAnswers: p.CorrectAnswers,
					IsPassed:       p.IsPassed,
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// GetProgress returns the course summary and every test attempt record of
// the user. A user without submissions gets a zero summary.
func (s *ModuleTestService) GetProgress(ctx context.Context, userID uint) (ProgressView, error) {
	db := s.DB.WithContext(ctx)
	if err := db.Select("id").First(&models.User{}, userID).Error; err != nil {
		return ProgressView{}, storeError(fmt.Sprintf("load user %d", userID), err)
	}

	var course models.CourseProgress
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&course).Error; err != nil {
		return ProgressView{}, storeError("load course progress", err)
	}

	tests := make([]TestProgressView, 0)
	err := db.Model(&models.TestProgress{}).
		Select(`test_progress.test_id, tests.name AS test_name, tests.module_id,
			modules.name AS module_name, test_progress.attempts,
			test_progress.correct_answers, test_progress.is_passed`).
		Joins("JOIN tests ON tests.id = test_progress.test_id").
		Joins("JOIN modules ON modules.id = tests.module_id").
		Where("test_progress.user_id = ?", userID).
		Order("tests.module_id").
		Scan(&tests).Error
	if err != nil {
		return ProgressView{}, storeError("list test progress", err)
	}

	return ProgressView{
		PassedTests:          course.PassedTests,
		CompletionPercentage: course.CompletionPercentage,
		IsComplete:           course.IsComplete,
		Tests:                tests,
	}, nil
}
