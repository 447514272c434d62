package database

import (
	"log"
	"os"

	"github.com/botiapp/watertruck-backend/internal/models"
	"gorm.io/gorm"
)

// SeedAdmin creates the admin account from ADMIN_PHONE/ADMIN_PASSWORD.
// Admins are never created through the registration endpoint.
func SeedAdmin(db *gorm.DB) error {
	phone := os.Getenv("ADMIN_PHONE")
	password := os.Getenv("ADMIN_PASSWORD")
	if phone == "" || password == "" {
		log.Println("Warning: ADMIN_PHONE/ADMIN_PASSWORD not set. Skipping admin seed.")
		return nil
	}

	var existing models.User
	if err := db.Where("phone = ?", phone).First(&existing).Error; err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	admin := models.User{
		FullName: "Administrator",
		Phone:    phone,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded admin account %s", phone)
	return nil
}
