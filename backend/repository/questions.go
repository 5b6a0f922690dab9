package repository

import (
	"context"

	"lms/backend/models"

	"gorm.io/gorm"
)

type QuestionOption struct {
	ID        uint
	Text      string
	IsCorrect bool
}

// BankQuestion is a question linked to a module's test, annotated with the
// topic and the level of the module that owns the topic.
type BankQuestion struct {
	ID              uint
	Name            string
	TopicID         uint
	TopicName       string
	LevelID         uint
	LevelRank       int
	CorrectOptionID *uint
	Options         []QuestionOption
}

// AnswerKey is the authoritative grading data for one question.
type AnswerKey struct {
	CorrectOptionID *uint
	LevelID         uint
}

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// TestForModule returns gorm.ErrRecordNotFound when the module has no test.
func (r *QuestionRepository) TestForModule(ctx context.Context, moduleID uint) (models.Test, error) {
	var test models.Test
	err := r.DB.WithContext(ctx).Where("module_id = ?", moduleID).First(&test).Error
	return test, err
}

type questionRow struct {
	QuestionID      uint
	QuestionName    string
	TopicID         uint
	TopicName       string
	LevelID         uint
	LevelRank       int
	CorrectOptionID *uint
	OptionID        *uint
	OptionText      *string
}

// ModuleQuestions loads the module's test and every question linked to it,
// options included, in question id order.
func (r *QuestionRepository) ModuleQuestions(ctx context.Context, moduleID uint) (models.Test, []BankQuestion, error) {
	test, err := r.TestForModule(ctx, moduleID)
	if err != nil {
		return models.Test{}, nil, err
	}

	var rows []questionRow
	err = r.DB.WithContext(ctx).
		Table("test_questions AS tq").
		Select(`q.id AS question_id, q.name AS question_name,
			t.id AS topic_id, t.name AS topic_name,
			l.id AS level_id, l.rank AS level_rank,
			q.correct_option_id AS correct_option_id,
			o.id AS option_id, o.value AS option_text`).
		Joins("JOIN questions q ON q.id = tq.question_id").
		Joins("JOIN topics t ON t.id = q.topic_id").
		Joins("JOIN modules m ON m.id = t.module_id").
		Joins("JOIN levels l ON l.id = m.level_id").
		Joins("LEFT JOIN question_options qo ON qo.question_id = q.id").
		Joins("LEFT JOIN options o ON o.id = qo.option_id").
		Where("tq.test_id = ?", test.ID).
		Order("q.id, o.id").
		Scan(&rows).Error
	if err != nil {
		return models.Test{}, nil, err
	}

	questions := make([]BankQuestion, 0)
	index := make(map[uint]int)
	for _, row := range rows {
		i, ok := index[row.QuestionID]
		if !ok {
			i = len(questions)
			index[row.QuestionID] = i
			questions = append(questions, BankQuestion{
				ID:              row.QuestionID,
				Name:            row.QuestionName,
				TopicID:         row.TopicID,
				TopicName:       row.TopicName,
				LevelID:         row.LevelID,
				LevelRank:       row.LevelRank,
				CorrectOptionID: row.CorrectOptionID,
				Options:         []QuestionOption{},
			})
		}
		if row.OptionID == nil {
			continue
		}
		option := QuestionOption{ID: *row.OptionID}
		if row.OptionText != nil {
			option.Text = *row.OptionText
		}
		option.IsCorrect = row.CorrectOptionID != nil && *row.CorrectOptionID == option.ID
		questions[i].Options = append(questions[i].Options, option)
	}

	return test, questions, nil
}

// AnswerKeys returns the grading key for every question linked to the test.
func (r *QuestionRepository) AnswerKeys(ctx context.Context, testID uint) (map[uint]AnswerKey, error) {
	var rows []struct {
		QuestionID      uint
		CorrectOptionID *uint
		LevelID         uint
	}
	err := r.DB.WithContext(ctx).
		Table("test_questions AS tq").
		Select("q.id AS question_id, q.correct_option_id AS correct_option_id, m.level_id AS level_id").
		Joins("JOIN questions q ON q.id = tq.question_id").
		Joins("JOIN topics t ON t.id = q.topic_id").
		Joins("JOIN modules m ON m.id = t.module_id").
		Where("tq.test_id = ?", testID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := make(map[uint]AnswerKey, len(rows))
	for _, row := range rows {
		keys[row.QuestionID] = AnswerKey{CorrectOptionID: row.CorrectOptionID, LevelID: row.LevelID}
	}
	return keys, nil
}

// Levels returns all levels in ascending rank order.
func (r *QuestionRepository) Levels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := r.DB.WithContext(ctx).Order("rank ASC").Find(&levels).Error
	return levels, err
}
