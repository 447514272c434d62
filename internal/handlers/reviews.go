package handlers

import (
	"errors"
	"strconv"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errAlreadyReviewed = errors.New("already reviewed")

// CreateReview records the customer's single post-completion rating and
// folds it into the driver's running average. The fold is one SQL update
// evaluated against the old row, so concurrent reviews for the same driver
// cannot lose increments.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid order ID"})
			return
		}

		var input struct {
			Rating  int    `json:"rating" binding:"required,min=1,max=5"`
			Comment string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.First(&order, orderID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Order not found"})
			return
		}

		if order.CustomerID != userID {
			c.JSON(403, gin.H{"error": "Not your order"})
			return
		}

		if order.Status != models.OrderStatusCompleted {
			c.JSON(400, gin.H{"error": "Order must be completed to review"})
			return
		}

		review := models.Review{
			OrderID:  uint(orderID),
			DriverID: order.DriverID,
			Rating:   input.Rating,
			Comment:  input.Comment,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var existing models.Review
			if err := tx.Where("order_id = ?", orderID).First(&existing).Error; err == nil {
				return errAlreadyReviewed
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err := tx.Create(&review).Error; err != nil {
				return err
			}

			return tx.Model(&models.DriverProfile{}).
				Where("user_id = ?", order.DriverID).
				Updates(map[string]interface{}{
					"average_rating": gorm.Expr(
						"(average_rating * rating_count + ?) / (rating_count + 1)", input.Rating),
					"rating_count": gorm.Expr("rating_count + 1"),
				}).Error
		})
		if err != nil {
			if errors.Is(err, errAlreadyReviewed) {
				c.JSON(400, gin.H{"error": "Already reviewed"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to create review"})
			return
		}

		c.JSON(201, gin.H{
			"id":       review.ID,
			"orderId":  review.OrderID,
			"driverId": review.DriverID,
			"rating":   review.Rating,
			"comment":  review.Comment,
		})
	}
}

// GetDriverReviews lists a driver's reviews with customer names
func GetDriverReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, err := strconv.ParseUint(c.Param("driverId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid driver ID"})
			return
		}

		var reviews []models.Review
		if err := db.Preload("Order").Preload("Order.Customer").
			Where("driver_id = ?", driverID).
			Order("created_at DESC").
			Find(&reviews).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		results := make([]gin.H, 0, len(reviews))
		for _, r := range reviews {
			customerName := "Unknown"
			if r.Order != nil && r.Order.Customer != nil {
				customerName = r.Order.Customer.FullName
			}
			results = append(results, gin.H{
				"id":           r.ID,
				"rating":       r.Rating,
				"comment":      r.Comment,
				"driverId":     r.DriverID,
				"customerName": customerName,
				"createdAt":    r.CreatedAt,
			})
		}

		c.JSON(200, results)
	}
}
