package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the engine reads or writes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Level{},
		&Module{},
		&Topic{},
		&Option{},
		&Question{},
		&Test{},
		&User{},
		&UserModule{},
		&TestProgress{},
		&CourseProgress{},
	)
}
