package model

import "time"

type NotificationType string

var (
	FamilyRequest NotificationType = "family_request"
)

type NotificationStatus string

var (
	NotificationPending  NotificationStatus = "pending"
	NotificationAccepted NotificationStatus = "accepted"
	NotificationDeclined NotificationStatus = "declined"
)

type NotificationPayload struct {
	FamilyID string `json:"family_id"`
}

type Notification struct {
	ID         string              `gorm:"column:id;primaryKey" json:"id"`
	Type       NotificationType    `gorm:"column:type" json:"type"`
	FromUserID string              `gorm:"column:from_user_id" json:"from_user_id"`
	ToUserID   string              `gorm:"column:to_user_id;index" json:"to_user_id"`
	Payload    NotificationPayload `gorm:"column:payload;type:text;serializer:json" json:"payload"`
	Status     NotificationStatus  `gorm:"column:status" json:"status"`
	CreatedAt  time.Time           `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"column:updated_at" json:"updated_at"`
}

func (m *Notification) TableName() string {
	return "notifications"
}
