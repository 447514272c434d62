package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/botiapp/watertruck-backend/internal/services"
	"github.com/botiapp/watertruck-backend/internal/statemachine"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateOrder places a new order against a chosen driver
func CreateOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		if role != models.RoleCustomer {
			c.JSON(403, gin.H{"error": "Only customers can order"})
			return
		}

		var input struct {
			DriverID        uint     `json:"driverId" binding:"required"`
			Amount          float64  `json:"amount" binding:"required,gt=0"`
			DeliveryLat     *float64 `json:"deliveryLat" binding:"required"`
			DeliveryLng     *float64 `json:"deliveryLng" binding:"required"`
			DeliveryAddress string   `json:"deliveryAddress"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var driver models.User
		if err := db.Where("id = ? AND role = ?", input.DriverID, models.RoleDriver).
			First(&driver).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver not found"})
			return
		}

		order := models.Order{
			CustomerID:      userID,
			DriverID:        input.DriverID,
			Status:          models.OrderStatusPending,
			Amount:          input.Amount,
			DeliveryLat:     *input.DeliveryLat,
			DeliveryLng:     *input.DeliveryLng,
			DeliveryAddress: input.DeliveryAddress,
		}

		if err := db.Create(&order).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create order"})
			return
		}

		c.JSON(201, order)
	}
}

// GetMyOrders lists the caller's orders, enriched with the counterpart name
func GetMyOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		var orders []models.Order
		query := db.Preload("Customer").Preload("Driver").Order("created_at DESC")
		if role == models.RoleDriver {
			query = query.Where("driver_id = ?", userID)
		} else {
			query = query.Where("customer_id = ?", userID)
		}
		if err := query.Find(&orders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch orders"})
			return
		}

		results := make([]gin.H, 0, len(orders))
		for i := range orders {
			results = append(results, orderResponse(&orders[i]))
		}

		c.JSON(200, results)
	}
}

// GetActiveOrder returns the caller's single non-terminal order. The
// customer view additionally carries the driver's live position.
func GetActiveOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		var order models.Order
		query := db.Preload("Customer").Preload("Driver").
			Where("status IN ?", models.ActiveStatuses).
			Order("created_at DESC")
		if role == models.RoleDriver {
			query = query.Where("driver_id = ?", userID)
		} else {
			query = query.Where("customer_id = ?", userID)
		}
		if err := query.First(&order).Error; err != nil {
			c.JSON(404, gin.H{"error": "No active order"})
			return
		}

		resp := orderResponse(&order)

		if role == models.RoleCustomer {
			var profile models.DriverProfile
			if err := db.Where("user_id = ?", order.DriverID).First(&profile).Error; err == nil {
				resp["driverCapacity"] = profile.Capacity

				// Prefer the Redis cache, fall back to the profile row.
				// The fields are omitted until the driver has reported
				// a position at least once.
				lat, lng, err := services.GetDriverLocation(context.Background(), order.DriverID)
				if err != nil && profile.CurrentLat != nil && profile.CurrentLng != nil {
					lat, lng = *profile.CurrentLat, *profile.CurrentLng
					err = nil
				}
				if err == nil {
					resp["driverLat"] = lat
					resp["driverLng"] = lng
				}
			}
		}

		c.JSON(200, resp)
	}
}

// GetAllOrders lists every order. Admin only.
func GetAllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != models.RoleAdmin {
			c.JSON(403, gin.H{"error": "Admin access required"})
			return
		}

		var orders []models.Order
		if err := db.Preload("Customer").Preload("Driver").
			Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch orders"})
			return
		}

		results := make([]gin.H, 0, len(orders))
		for i := range orders {
			results = append(results, orderResponse(&orders[i]))
		}

		c.JSON(200, results)
	}
}

// UpdateOrderStatus moves an order along the lifecycle graph and notifies
// the counterparty. The status write and the notification are not atomic;
// a failed notification never rolls back the status.
func UpdateOrderStatus(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid order ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=pending accepted en_route completed cancelled"`
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

		switch role {
		case models.RoleDriver:
			if order.DriverID != userID {
				c.JSON(403, gin.H{"error": "Not your order"})
				return
			}
		case models.RoleCustomer:
			if order.CustomerID != userID {
				c.JSON(403, gin.H{"error": "Not your order"})
				return
			}
			if input.Status != models.OrderStatusCancelled {
				c.JSON(403, gin.H{"error": "Customers can only cancel"})
				return
			}
		default:
			c.JSON(403, gin.H{"error": "Not a participant of this order"})
			return
		}

		if err := statemachine.CanTransition(order.Status, input.Status, role); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		order.Status = input.Status
		if err := db.Save(&order).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update order status"})
			return
		}

		ctx := context.Background()
		if role == models.RoleDriver {
			notifier.Notify(ctx, order.CustomerID, "Order update",
				fmt.Sprintf("Your order status changed to: %s", order.Status))
		} else {
			notifier.Notify(ctx, order.DriverID, "Order cancelled",
				"The customer cancelled the order")
		}

		c.JSON(200, gin.H{
			"orderId": order.ID,
			"status":  order.Status,
		})
	}
}

// orderResponse builds the enriched order view
func orderResponse(order *models.Order) gin.H {
	resp := gin.H{
		"id":              order.ID,
		"customerId":      order.CustomerID,
		"driverId":        order.DriverID,
		"status":          order.Status,
		"amount":          order.Amount,
		"deliveryLat":     order.DeliveryLat,
		"deliveryLng":     order.DeliveryLng,
		"deliveryAddress": order.DeliveryAddress,
		"createdAt":       order.CreatedAt,
	}
	if order.Customer != nil {
		resp["customerName"] = order.Customer.FullName
	}
	if order.Driver != nil {
		resp["driverName"] = order.Driver.FullName
	}
	return resp
}
