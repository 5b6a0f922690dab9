package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lms/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Outcome is the persisted state after one module test submission.
type Outcome struct {
	Progress   models.TestProgress
	Course     models.CourseProgress
	PromotedTo *models.Level
}

// Tracker owns TestProgress, CourseProgress and level promotion. Every
// mutation runs in one transaction that first locks the user row, so
// submissions of the same user serialize.
type Tracker struct {
	DB               *gorm.DB
	PassThreshold    float64
	EntranceModuleID uint
	Logger           *slog.Logger
}

func NewTracker(db *gorm.DB, passThreshold float64, entranceModuleID uint, logger *slog.Logger) *Tracker {
	return &Tracker{DB: db, PassThreshold: passThreshold, EntranceModuleID: entranceModuleID, Logger: logger}
}

func (t *Tracker) Passed(correct, total int) bool {
	return total > 0 && Percent(correct, total) >= t.PassThreshold
}

// Record stores the latest attempt of a user on a test. Attempts grow by one
// per call; correct answers and the pass flag are replaced by this attempt.
func (t *Tracker) Record(ctx context.Context, userID, testID uint, correct, total int) (Outcome, error) {
	var out Outcome
	passed := t.Passed(correct, total)

	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		row := models.TestProgress{
			UserID:         userID,
			TestID:         testID,
			Attempts:       1,
			CorrectAnswers: correct,
			IsPassed:       passed,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "test_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"attempts":        gorm.Expr("test_progress.attempts + 1"),
				"correct_answers": correct,
				"is_passed":       passed,
				"updated_at":      time.Now(),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND test_id = ?", userID, testID).First(&out.Progress).Error; err != nil {
			return err
		}

		if out.Course, err = t.recomputeCourse(tx, userID); err != nil {
			return err
		}
		out.PromotedTo, err = t.promote(tx, &user)
		return err
	})
	if err != nil {
		return Outcome{}, storeError("record submission", err)
	}
	return out, nil
}

// RecomputeCourse rebuilds the course row of one user from the current tests.
func (t *Tracker) RecomputeCourse(ctx context.Context, userID uint) (models.CourseProgress, error) {
	var course models.CourseProgress
	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockUser(tx, userID); err != nil {
			return err
		}
		var err error
		course, err = t.recomputeCourse(tx, userID)
		return err
	})
	if err != nil {
		return models.CourseProgress{}, storeError("recompute course progress", err)
	}
	return course, nil
}

func (t *Tracker) recomputeCourse(tx *gorm.DB, userID uint) (models.CourseProgress, error) {
	var total int64
	err := tx.Model(&models.Test{}).
		Joins("JOIN modules ON modules.id = tests.module_id").
		Where("tests.module_id <> ?", t.EntranceModuleID).
		Count(&total).Error
	if err != nil {
		return models.CourseProgress{}, err
	}

	var passed int64
	err = tx.Model(&models.TestProgress{}).
		Joins("JOIN tests ON tests.id = test_progress.test_id").
		Joins("JOIN modules ON modules.id = tests.module_id").
		Where("test_progress.user_id = ? AND test_progress.is_passed = ?", userID, true).
		Where("tests.module_id <> ?", t.EntranceModuleID).
		Count(&passed).Error
	if err != nil {
		return models.CourseProgress{}, err
	}

	course := models.CourseProgress{UserID: userID, PassedTests: int(passed)}
	if total > 0 {
		course.CompletionPercentage = float64(passed) / float64(total) * 100
	}
	course.IsComplete = course.CompletionPercentage >= 100

	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"passed_tests", "completion_percentage", "is_complete", "updated_at"}),
	}).Create(&course).Error
	if err != nil {
		return models.CourseProgress{}, err
	}

	var stored models.CourseProgress
	err = tx.Where("user_id = ?", userID).First(&stored).Error
	return stored, err
}

// promote moves the user one rank up once every test at the current level is
// passed. Levels without tests never promote, and the top level stays put.
func (t *Tracker) promote(tx *gorm.DB, user *models.User) (*models.Level, error) {
	if user.LevelID == nil {
		return nil, nil
	}

	var current models.Level
	if err := tx.First(&current, *user.LevelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var testIDs []uint
	err := tx.Model(&models.Test{}).
		Joins("JOIN modules ON modules.id = tests.module_id").
		Where("modules.level_id = ? AND tests.module_id <> ?", current.ID, t.EntranceModuleID).
		Pluck("tests.id", &testIDs).Error
	if err != nil || len(testIDs) == 0 {
		return nil, err
	}

	var passed int64
	err = tx.Model(&models.TestProgress{}).
		Where("user_id = ? AND is_passed = ? AND test_id IN ?", user.ID, true, testIDs).
		Count(&passed).Error
	if err != nil || int(passed) < len(testIDs) {
		return nil, err
	}

	var next models.Level
	if err := tx.Where("rank > ?", current.Rank).Order("rank ASC").First(&next).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := tx.Model(user).Update("level_id", next.ID).Error; err != nil {
		return nil, err
	}
	if _, err := enrollLevelModules(tx, user.ID, next.ID, t.EntranceModuleID); err != nil {
		return nil, err
	}

	t.Logger.Info("user promoted", "user_id", user.ID, "from_level", current.ID, "to_level", next.ID)
	return &next, nil
}

func lockUser(tx *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error
	return user, err
}

// enrollLevelModules links the user to every module of the level; existing
// links are left alone.
func enrollLevelModules(tx *gorm.DB, userID, levelID, entranceModuleID uint) ([]uint, error) {
	var moduleIDs []uint
	err := tx.Model(&models.Module{}).
		Where("level_id = ? AND id <> ?", levelID, entranceModuleID).
		Order("id").
		Pluck("id", &moduleIDs).Error
	if err != nil || len(moduleIDs) == 0 {
		return moduleIDs, err
	}

	links := make([]models.UserModule, len(moduleIDs))
	for i, id := range moduleIDs {
		links[i] = models.UserModule{UserID: userID, ModuleID: id}
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoNothing: true,
	}).Create(&links).Error
	return moduleIDs, err
}
