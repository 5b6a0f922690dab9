package models

import "time"

// TestProgress tracks a user's attempts on one test. CorrectAnswers and
// IsPassed always describe the latest attempt.
type TestProgress struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"not null;uniqueIndex:idx_test_progress_user_test"`
	TestID         uint `gorm:"not null;uniqueIndex:idx_test_progress_user_test"`
	Attempts       int  `gorm:"not null"`
	CorrectAnswers int  `gorm:"not null"`
	IsPassed       bool `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (TestProgress) TableName() string { return "test_progress" }

type CourseProgress struct {
	ID                   uint    `gorm:"primaryKey"`
	UserID               uint    `gorm:"not null;uniqueIndex"`
	PassedTests          int     `gorm:"not null"`
	CompletionPercentage float64 `gorm:"not null"`
	IsComplete           bool    `gorm:"not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (CourseProgress) TableName() string { return "course_progress" }
