package models

import (
	"gorm.io/gorm"
)

// Notification is the durable in-app record of a dispatched message.
// Rows are written regardless of push delivery success and never deleted.
type Notification struct {
	gorm.Model
	UserID uint   `json:"userId" gorm:"not null;index"`
	Title  string `json:"title" gorm:"not null"`
	Body   string `json:"body" gorm:"not null"`
	IsRead bool   `json:"isRead" gorm:"not null;default:false"`
	User   *User  `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}

// PushSubscription is a device registration token for push delivery
type PushSubscription struct {
	gorm.Model
	UserID uint   `json:"userId" gorm:"not null;uniqueIndex:idx_user_token"`
	Token  string `json:"token" gorm:"not null;uniqueIndex:idx_user_token"`
	User   *User  `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
