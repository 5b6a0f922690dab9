package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrCorrectOptionNotOwned = errors.New("correct option does not belong to the question")

// Test is the exam attached to a module. The unique index on ModuleID keeps
// at most one test per module.
type Test struct {
	ID        uint       `gorm:"primaryKey"`
	Name      string     `gorm:"not null"`
	ModuleID  uint       `gorm:"not null;uniqueIndex"`
	Questions []Question `gorm:"many2many:test_questions;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Question struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"not null"`
	TopicID         uint   `gorm:"not null;index"`
	Topic           Topic
	CorrectOptionID *uint
	Options         []Option `gorm:"many2many:question_options;"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Option struct {
	ID        uint   `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks that a set correct option is one of the question's options.
// Options must be loaded for the check to be meaningful.
func (q *Question) Validate() error {
	if q.CorrectOptionID == nil {
		return nil
	}
	for _, o := range q.Options {
		if o.ID == *q.CorrectOptionID {
			return nil
		}
	}
	return ErrCorrectOptionNotOwned
}

func (q *Question) BeforeSave(tx *gorm.DB) error {
	if q.CorrectOptionID == nil || len(q.Options) == 0 {
		return nil
	}
	return q.Validate()
}
