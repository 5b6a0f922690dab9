package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Name         string
	Email        string `gorm:"unique;not null"`
	Role         string `gorm:"default:user"`
	LevelID      *uint
	Level        *Level
	EntranceTest bool `gorm:"not null;default:false"`
}

// UserModule enrolls a user into a module.
type UserModule struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_module"`
	ModuleID  uint `gorm:"not null;uniqueIndex:idx_user_module"`
	CreatedAt time.Time
}
