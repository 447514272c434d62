package models

import (
	"gorm.io/gorm"
)

// OrderStatus constants
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusEnRoute   = "en_route"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order is a single water delivery between one customer and one driver
type Order struct {
	gorm.Model
	CustomerID      uint    `json:"customerId" gorm:"not null"`
	DriverID        uint    `json:"driverId" gorm:"not null"`
	Status          string  `json:"status" gorm:"not null;default:'pending'"`
	Amount          float64 `json:"amount" gorm:"not null"`
	DeliveryLat     float64 `json:"deliveryLat" gorm:"not null"`
	DeliveryLng     float64 `json:"deliveryLng" gorm:"not null"`
	DeliveryAddress string  `json:"deliveryAddress,omitempty"`
	// One-shot guard so the proximity notification fires once per order
	ArrivalNotified bool  `json:"-" gorm:"not null;default:false"`
	Customer        *User `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Driver          *User `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// ActiveStatuses are the non-terminal order states
var ActiveStatuses = []string{OrderStatusPending, OrderStatusAccepted, OrderStatusEnRoute}
