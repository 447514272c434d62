package models

import (
	"time"

	"gorm.io/gorm"
)

// DriverProfile holds driver-specific attributes layered on a User
type DriverProfile struct {
	gorm.Model
	UserID             uint       `json:"userId" gorm:"not null;uniqueIndex"`
	TruckType          string     `json:"truckType" gorm:"not null"`
	Capacity           int        `json:"capacity" gorm:"not null"` // liters
	Price              float64    `json:"price" gorm:"not null"`    // per trip
	IsAvailable        bool       `json:"isAvailable" gorm:"not null;default:false"`
	CurrentLat         *float64   `json:"currentLat,omitempty"`
	CurrentLng         *float64   `json:"currentLng,omitempty"`
	LastLocationUpdate *time.Time `json:"lastLocationUpdate,omitempty"`
	AverageRating      float64    `json:"averageRating" gorm:"not null;default:0"`
	RatingCount        int        `json:"ratingCount" gorm:"not null;default:0"`
	User               *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (DriverProfile) TableName() string {
	return "driver_profiles"
}
