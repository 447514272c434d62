package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/botiapp/watertruck-backend/internal/database"
	"github.com/botiapp/watertruck-backend/internal/middleware"
	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/botiapp/watertruck-backend/internal/services"
	"github.com/botiapp/watertruck-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	notifier := services.NewNotifier(db, nil)
	hub := services.NewChatHub()

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/register", Register(db))
	api.POST("/auth/login", Login(db))
	api.GET("/reviews/driver/:driverId", GetDriverReviews(db))

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/drivers/profile", GetDriverProfile(db))
		protected.PUT("/drivers/profile", UpdateDriverProfile(db))
		protected.POST("/drivers/status", UpdateDriverAvailability(db))
		protected.POST("/drivers/location", UpdateDriverLocation(db, notifier))
		protected.GET("/drivers/nearby", GetNearbyDrivers(db))
		protected.GET("/drivers/stats", GetDriverStats(db))

		protected.POST("/orders", CreateOrder(db))
		protected.GET("/orders/my", GetMyOrders(db))
		protected.GET("/orders/active", GetActiveOrder(db))
		protected.GET("/orders/all", GetAllOrders(db))
		protected.PUT("/orders/:id/status", UpdateOrderStatus(db, notifier))

		protected.POST("/reviews/:orderId", CreateReview(db))

		protected.GET("/chat/:orderId", GetChatHistory(db))
		protected.GET("/chat/ws/:orderId", ChatWebSocket(db, hub))

		protected.POST("/notifications/subscribe", Subscribe(db))
		protected.GET("/notifications", ListNotifications(db))
		protected.POST("/notifications/:id/read", MarkNotificationRead(db))
		protected.POST("/notifications/broadcast", BroadcastNotification(db, notifier))

		protected.POST("/safety/sos", TriggerSOS(db, notifier))
	}

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, name, phone, role string) *models.User {
	t.Helper()

	user := models.User{
		FullName: name,
		Phone:    phone,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(&user).Error)

	if role == models.RoleDriver {
		profile := models.DriverProfile{
			UserID:    user.ID,
			TruckType: "Standard",
			Capacity:  10000,
			Price:     50.0,
		}
		require.NoError(t, db.Create(&profile).Error)
	}

	return &user
}

func setDriverPosition(t *testing.T, db *gorm.DB, driverID uint, lat, lng float64, available bool) {
	t.Helper()
	require.NoError(t, db.Model(&models.DriverProfile{}).
		Where("user_id = ?", driverID).
		Updates(map[string]interface{}{
			"current_lat":  lat,
			"current_lng":  lng,
			"is_available": available,
		}).Error)
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func notificationCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}
