package repository

import (
	"family-calendar-backend/cmd/family-calendar/model"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Profile{},
		&model.EventType{},
		&model.Event{},
		&model.Notification{},
	)
}
