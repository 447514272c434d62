package handlers

import (
	"context"
	"os"
	"strconv"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/botiapp/watertruck-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Subscribe registers a device token for push delivery
func Subscribe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var input struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		sub := models.PushSubscription{UserID: userID, Token: input.Token}
		if err := db.Where("user_id = ? AND token = ?", userID, input.Token).
			FirstOrCreate(&sub).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to register subscription"})
			return
		}

		c.JSON(200, gin.H{"status": "success"})
	}
}

// PublicKey returns the web push key pair's public half, used by web
// clients to request a push token
func PublicKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"publicKey": os.Getenv("WEB_PUSH_PUBLIC_KEY")})
	}
}

// ListNotifications returns the caller's in-app notification history
func ListNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var notifications []models.Notification
		if err := db.Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&notifications).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
			return
		}

		c.JSON(200, notifications)
	}
}

// MarkNotificationRead flags one of the caller's notifications as read
func MarkNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid notification ID"})
			return
		}

		var notification models.Notification
		if err := db.Where("id = ? AND user_id = ?", notificationID, userID).
			First(&notification).Error; err != nil {
			c.JSON(404, gin.H{"error": "Notification not found"})
			return
		}

		notification.IsRead = true
		if err := db.Save(&notification).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update notification"})
			return
		}

		c.JSON(200, gin.H{"status": "read"})
	}
}

// BroadcastNotification sends a notification to every user of a role.
// Admin only.
func BroadcastNotification(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != models.RoleAdmin {
			c.JSON(403, gin.H{"error": "Admin access required"})
			return
		}

		var input struct {
			Title string `json:"title" binding:"required"`
			Body  string `json:"body" binding:"required"`
			Role  string `json:"role" binding:"omitempty,oneof=customer driver"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var users []models.User
		query := db.Where("is_active = ?", true)
		if input.Role != "" {
			query = query.Where("role = ?", input.Role)
		} else {
			query = query.Where("role IN ?", []string{models.RoleCustomer, models.RoleDriver})
		}
		if err := query.Find(&users).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch recipients"})
			return
		}

		ctx := context.Background()
		for _, user := range users {
			notifier.Notify(ctx, user.ID, input.Title, input.Body)
		}

		c.JSON(200, gin.H{
			"message":    "Broadcast sent",
			"recipients": len(users),
		})
	}
}
