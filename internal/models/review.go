package models

import (
	"gorm.io/gorm"
)

// Review is the single post-completion rating for an order.
// Written once, never updated.
type Review struct {
	gorm.Model
	OrderID  uint   `json:"orderId" gorm:"not null;uniqueIndex"`
	DriverID uint   `json:"driverId" gorm:"not null;index"`
	Rating   int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment  string `json:"comment,omitempty"`
	Order    *Order `json:"-" gorm:"foreignKey:OrderID"`
	Driver   *User  `json:"-" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (Review) TableName() string {
	return "reviews"
}
