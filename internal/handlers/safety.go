package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/botiapp/watertruck-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TriggerSOS records an emergency report and alerts every admin
func TriggerSOS(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var input struct {
			Lat *float64 `json:"lat" binding:"required"`
			Lng *float64 `json:"lng" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		log.Printf("SOS triggered by user %d (%s) at %.6f, %.6f",
			user.ID, user.FullName, *input.Lat, *input.Lng)

		var admins []models.User
		if err := db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
			log.Printf("Failed to load admins for SOS dispatch: %v", err)
		}

		ctx := context.Background()
		for _, admin := range admins {
			notifier.Notify(ctx, admin.ID, "SOS alert",
				fmt.Sprintf("%s (%s) requested help at %.6f, %.6f",
					user.FullName, user.Phone, *input.Lat, *input.Lng))
		}

		c.JSON(200, gin.H{
			"status":  "sos_received",
			"message": "Help request sent successfully",
		})
	}
}
