package handlers

import (
	"strconv"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/botiapp/watertruck-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// chatParticipant loads the order and verifies that the caller is its
// customer or driver. History and the live relay share the same check.
func chatParticipant(c *gin.Context, db *gorm.DB) (*models.Order, bool) {
	userID := c.GetUint("userId")

	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid order ID"})
		return nil, false
	}

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(404, gin.H{"error": "Order not found"})
		return nil, false
	}

	if order.CustomerID != userID && order.DriverID != userID {
		c.JSON(403, gin.H{"error": "Not allowed"})
		return nil, false
	}

	return &order, true
}

// GetChatHistory returns the durable message log for an order
func GetChatHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := chatParticipant(c, db)
		if !ok {
			return
		}

		var messages []models.Message
		if err := db.Where("order_id = ?", order.ID).
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch messages"})
			return
		}

		c.JSON(200, messages)
	}
}

// ChatWebSocket joins the order's live chat room. The connection runs
// behind the same auth middleware as the REST endpoints (token query
// param) and is restricted to the order's participants.
func ChatWebSocket(db *gorm.DB, hub *services.ChatHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := chatParticipant(c, db)
		if !ok {
			return
		}

		userID := c.GetUint("userId")
		services.ServeChat(hub, db, c.Writer, c.Request, order.ID, userID)
	}
}

// UploadChatMedia stores an image or voice attachment and returns its URL.
// The URL is sent as the content of a follow-up chat message.
func UploadChatMedia(db *gorm.DB, store services.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := chatParticipant(c, db); !ok {
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(400, gin.H{"error": "File is required"})
			return
		}

		url, err := store.Save(file, "chat")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to store file"})
			return
		}

		c.JSON(201, gin.H{"url": url})
	}
}
