package models

import "time"

// Level is a proficiency tier. Rank defines the promotion order and is
// independent of the storage id.
type Level struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Rank      int       `gorm:"not null;uniqueIndex" json:"rank"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Module struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	LevelID     uint      `gorm:"not null;index" json:"level_id"`
	Level       Level     `json:"-"`
	Topics      []Topic   `json:"topics,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type Topic struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	ModuleID    uint      `gorm:"not null;index" json:"module_id"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
