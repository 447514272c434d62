package models

import (
	"gorm.io/gorm"
)

// MessageType constants
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeVoice    = "voice"
	MessageTypeLocation = "location"
)

// Message is one chat entry in an order's conversation. Append-only.
type Message struct {
	gorm.Model
	OrderID     uint   `json:"orderId" gorm:"not null;index"`
	SenderID    uint   `json:"senderId" gorm:"not null"`
	Content     string `json:"content" gorm:"not null"`
	MessageType string `json:"type" gorm:"column:message_type;not null;default:'text'"`
	Order       *Order `json:"-" gorm:"foreignKey:OrderID"`
	Sender      *User  `json:"-" gorm:"foreignKey:SenderID"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}
