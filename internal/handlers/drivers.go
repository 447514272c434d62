package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/botiapp/watertruck-backend/internal/services"
	"github.com/botiapp/watertruck-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// arrivalRadiusKm is the distance at which the customer is told the
// driver is approaching
const arrivalRadiusKm = 0.5

// GetDriverProfile retrieves the driver's own profile
func GetDriverProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		if role != models.RoleDriver {
			c.JSON(403, gin.H{"error": "Not a driver"})
			return
		}

		var profile models.DriverProfile
		if err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(404, gin.H{"error": "Profile not found"})
			return
		}

		c.JSON(200, driverProfileResponse(&profile))
	}
}

// UpdateDriverProfile updates truck attributes and price
func UpdateDriverProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		if role != models.RoleDriver {
			c.JSON(403, gin.H{"error": "Not a driver"})
			return
		}

		var input struct {
			TruckType string  `json:"truckType" binding:"required"`
			Capacity  int     `json:"capacity" binding:"required,gt=0"`
			Price     float64 `json:"price" binding:"required,gt=0"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var profile models.DriverProfile
		if err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(404, gin.H{"error": "Profile not found"})
			return
		}

		profile.TruckType = input.TruckType
		profile.Capacity = input.Capacity
		profile.Price = input.Price

		if err := db.Save(&profile).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, driverProfileResponse(&profile))
	}
}

// UpdateDriverAvailability toggles the driver's availability flag
func UpdateDriverAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		if role != models.RoleDriver {
			c.JSON(403, gin.H{"error": "Not a driver"})
			return
		}

		var input struct {
			IsAvailable *bool `json:"isAvailable"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.IsAvailable == nil {
			c.JSON(400, gin.H{"error": "isAvailable field is required"})
			return
		}

		var profile models.DriverProfile
		if err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(404, gin.H{"error": "Profile not found"})
			return
		}

		profile.IsAvailable = *input.IsAvailable
		if err := db.Save(&profile).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update availability"})
			return
		}

		ctx := context.Background()
		if err := services.SetDriverAvailability(ctx, userID, profile.IsAvailable); err != nil {
			log.Printf("Failed to cache availability for driver %d: %v", userID, err)
		}

		c.JSON(200, driverProfileResponse(&profile))
	}
}

// UpdateDriverLocation stores the driver's reported position and runs the
// proximity check against their en-route order
func UpdateDriverLocation(db *gorm.DB, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		if role != models.RoleDriver {
			c.JSON(403, gin.H{"error": "Only drivers can update location"})
			return
		}

		var input struct {
			Lat *float64 `json:"lat" binding:"required"`
			Lng *float64 `json:"lng" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		lat, lng := *input.Lat, *input.Lng
		if lat < -90 || lat > 90 {
			c.JSON(400, gin.H{"error": "Invalid latitude"})
			return
		}
		if lng < -180 || lng > 180 {
			c.JSON(400, gin.H{"error": "Invalid longitude"})
			return
		}

		var profile models.DriverProfile
		if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(404, gin.H{"error": "Profile not found"})
			return
		}

		now := time.Now()
		profile.CurrentLat = &lat
		profile.CurrentLng = &lng
		profile.LastLocationUpdate = &now
		if err := db.Save(&profile).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update location"})
			return
		}

		ctx := context.Background()
		if err := services.SetDriverLocation(ctx, userID, lat, lng); err != nil {
			log.Printf("Failed to cache location for driver %d: %v", userID, err)
		}

		checkArrival(ctx, db, notifier, userID, lat, lng)

		c.JSON(200, gin.H{
			"message": "Location updated successfully",
			"location": gin.H{
				"lat": lat,
				"lng": lng,
			},
		})
	}
}

// checkArrival fires a one-shot "approaching" notification to the customer
// once the driver comes within arrivalRadiusKm of the delivery point of
// their en-route order.
func checkArrival(ctx context.Context, db *gorm.DB, notifier *services.Notifier, driverID uint, lat, lng float64) {
	var order models.Order
	err := db.Where("driver_id = ? AND status = ? AND arrival_notified = ?",
		driverID, models.OrderStatusEnRoute, false).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return
	}

	if !utils.IsWithinRadius(order.DeliveryLat, order.DeliveryLng, lat, lng, arrivalRadiusKm) {
		return
	}

	if err := db.Model(&order).Update("arrival_notified", true).Error; err != nil {
		log.Printf("Failed to mark arrival for order %d: %v", order.ID, err)
		return
	}

	notifier.Notify(ctx, order.CustomerID, "Driver approaching",
		fmt.Sprintf("Your water truck is less than %d meters away", int(arrivalRadiusKm*1000)))
}

// GetNearbyDrivers lists available drivers within a radius of a point.
// Credential fields are never part of the response.
func GetNearbyDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		latStr := c.Query("lat")
		lngStr := c.Query("lng")
		radiusStr := c.DefaultQuery("radius", "10") // Default 10km radius

		if latStr == "" || lngStr == "" {
			c.JSON(400, gin.H{"error": "Latitude and longitude are required"})
			return
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil || lat < -90 || lat > 90 {
			c.JSON(400, gin.H{"error": "Invalid latitude"})
			return
		}

		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil || lng < -180 || lng > 180 {
			c.JSON(400, gin.H{"error": "Invalid longitude"})
			return
		}

		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			c.JSON(400, gin.H{"error": "Invalid radius"})
			return
		}

		// Bounding box prefilter in SQL, exact haversine filter in Go
		bbox := utils.GetBoundingBox(lat, lng, radius)

		var profiles []models.DriverProfile
		if err := db.Preload("User").
			Where("is_available = ?", true).
			Where("current_lat IS NOT NULL AND current_lng IS NOT NULL").
			Where("current_lat BETWEEN ? AND ?", bbox.SouthWest.Lat, bbox.NorthEast.Lat).
			Where("current_lng BETWEEN ? AND ?", bbox.SouthWest.Lng, bbox.NorthEast.Lng).
			Find(&profiles).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch drivers"})
			return
		}

		ctx := context.Background()
		nearbyDrivers := []gin.H{}
		for _, profile := range profiles {
			// The cache is written on every availability toggle, so it can
			// be fresher than the row. A cache miss falls back to the row.
			if cached, err := services.GetDriverAvailability(ctx, profile.UserID); err == nil && !cached {
				continue
			}

			distance := utils.HaversineDistance(lat, lng, *profile.CurrentLat, *profile.CurrentLng)
			if distance > radius {
				continue
			}

			driver := driverProfileResponse(&profile)
			driver["distance"] = distance
			nearbyDrivers = append(nearbyDrivers, driver)
		}

		c.JSON(200, gin.H{
			"drivers": nearbyDrivers,
			"count":   len(nearbyDrivers),
		})
	}
}

// GetDriverStats returns delivery and rating aggregates for the driver
func GetDriverStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		if role != models.RoleDriver {
			c.JSON(403, gin.H{"error": "Not a driver"})
			return
		}

		var profile models.DriverProfile
		if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(404, gin.H{"error": "Profile not found"})
			return
		}

		var completedOrders int64
		db.Model(&models.Order{}).
			Where("driver_id = ? AND status = ?", userID, models.OrderStatusCompleted).
			Count(&completedOrders)

		var totalEarnings float64
		db.Model(&models.Order{}).
			Where("driver_id = ? AND status = ?", userID, models.OrderStatusCompleted).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&totalEarnings)

		var activeOrders int64
		db.Model(&models.Order{}).
			Where("driver_id = ? AND status IN ?", userID, models.ActiveStatuses).
			Count(&activeOrders)

		c.JSON(200, gin.H{
			"completedOrders": completedOrders,
			"activeOrders":    activeOrders,
			"totalEarnings":   totalEarnings,
			"averageRating":   profile.AverageRating,
			"ratingCount":     profile.RatingCount,
		})
	}
}

// driverProfileResponse builds the public view of a driver profile
func driverProfileResponse(profile *models.DriverProfile) gin.H {
	resp := gin.H{
		"id":            profile.ID,
		"userId":        profile.UserID,
		"truckType":     profile.TruckType,
		"capacity":      profile.Capacity,
		"price":         profile.Price,
		"isAvailable":   profile.IsAvailable,
		"currentLat":    profile.CurrentLat,
		"currentLng":    profile.CurrentLng,
		"averageRating": profile.AverageRating,
		"ratingCount":   profile.RatingCount,
	}
	if profile.User != nil {
		resp["driverName"] = profile.User.FullName
		resp["phoneNumber"] = profile.User.Phone
	}
	return resp
}
