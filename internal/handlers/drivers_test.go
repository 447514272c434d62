package handlers

import (
	"testing"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateDriverLocationFiresProximityOnce(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	customer := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)
	driver := createTestUser(t, db, "Omar Driver", "0922222222", models.RoleDriver)

	order := models.Order{
		CustomerID:  customer.ID,
		DriverID:    driver.ID,
		Status:      models.OrderStatusEnRoute,
		Amount:      75.0,
		DeliveryLat: 0,
		DeliveryLng: 0,
	}
	require.NoError(t, db.Create(&order).Error)

	// Far away: no notification
	w := doRequest(t, r, "POST", "/api/drivers/location", tokenFor(t, driver),
		map[string]interface{}{"lat": 1.0, "lng": 0.0})
	require.Equal(t, 200, w.Code)
	assert.Zero(t, notificationCount(t, db, customer.ID))

	// About 111 m from the delivery point: inside the 500 m radius
	w = doRequest(t, r, "POST", "/api/drivers/location", tokenFor(t, driver),
		map[string]interface{}{"lat": 0.001, "lng": 0.0})
	require.Equal(t, 200, w.Code)
	assert.EqualValues(t, 1, notificationCount(t, db, customer.ID))

	// Still inside the radius: the one-shot guard suppresses a re-fire
	w = doRequest(t, r, "POST", "/api/drivers/location", tokenFor(t, driver),
		map[string]interface{}{"lat": 0.0005, "lng": 0.0})
	require.Equal(t, 200, w.Code)
	assert.EqualValues(t, 1, notificationCount(t, db, customer.ID))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.True(t, reloaded.ArrivalNotified)
}

func TestUpdateDriverLocationValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	customer := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)
	driver := createTestUser(t, db, "Omar Driver", "0922222222", models.RoleDriver)

	// Customers cannot report locations
	w := doRequest(t, r, "POST", "/api/drivers/location", tokenFor(t, customer),
		map[string]interface{}{"lat": 1.0, "lng": 1.0})
	assert.Equal(t, 403, w.Code)

	w = doRequest(t, r, "POST", "/api/drivers/location", tokenFor(t, driver),
		map[string]interface{}{"lat": 95.0, "lng": 1.0})
	assert.Equal(t, 400, w.Code)

	w = doRequest(t, r, "POST", "/api/drivers/location", tokenFor(t, driver),
		map[string]interface{}{"lat": 1.0, "lng": 190.0})
	assert.Equal(t, 400, w.Code)
}

func TestGetNearbyDrivers(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	customer := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)
	near := createTestUser(t, db, "Omar Near", "0922222222", models.RoleDriver)
	far := createTestUser(t, db, "Nasser Far", "0933333333", models.RoleDriver)
	unavailable := createTestUser(t, db, "Sami Busy", "0944444444", models.RoleDriver)

	setDriverPosition(t, db, near.ID, 0.01, 0.01, true)
	setDriverPosition(t, db, far.ID, 2.0, 2.0, true)
	setDriverPosition(t, db, unavailable.ID, 0.01, 0.01, false)

	w := doRequest(t, r, "GET", "/api/drivers/nearby?lat=0&lng=0&radius=10", tokenFor(t, customer), nil)
	require.Equal(t, 200, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Contains(t, w.Body.String(), "Omar Near")
	assert.NotContains(t, w.Body.String(), "Nasser Far")
	assert.NotContains(t, w.Body.String(), "Sami Busy")

	// Credential fields never appear in the listing
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "Hash")

	// Missing coordinates
	w = doRequest(t, r, "GET", "/api/drivers/nearby", tokenFor(t, customer), nil)
	assert.Equal(t, 400, w.Code)
}

func TestDriverProfileAndAvailability(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	customer := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)
	driver := createTestUser(t, db, "Omar Driver", "0922222222", models.RoleDriver)

	// Customers have no driver profile surface
	w := doRequest(t, r, "GET", "/api/drivers/profile", tokenFor(t, customer), nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(t, r, "GET", "/api/drivers/profile", tokenFor(t, driver), nil)
	require.Equal(t, 200, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Standard", body["truckType"])
	assert.Equal(t, "Omar Driver", body["driverName"])

	w = doRequest(t, r, "PUT", "/api/drivers/profile", tokenFor(t, driver), map[string]interface{}{
		"truckType": "12000 Liters",
		"capacity":  12000,
		"price":     65.0,
	})
	require.Equal(t, 200, w.Code)

	w = doRequest(t, r, "POST", "/api/drivers/status", tokenFor(t, driver),
		map[string]interface{}{"isAvailable": true})
	require.Equal(t, 200, w.Code)

	var profile models.DriverProfile
	require.NoError(t, db.Where("user_id = ?", driver.ID).First(&profile).Error)
	assert.Equal(t, "12000 Liters", profile.TruckType)
	assert.Equal(t, 12000, profile.Capacity)
	assert.True(t, profile.IsAvailable)
}

func TestGetDriverStats(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	customer := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)
	driver := createTestUser(t, db, "Omar Driver", "0922222222", models.RoleDriver)

	createTestOrder(t, db, customer, driver, models.OrderStatusCompleted)
	createTestOrder(t, db, customer, driver, models.OrderStatusCompleted)
	createTestOrder(t, db, customer, driver, models.OrderStatusEnRoute)
	createTestOrder(t, db, customer, driver, models.OrderStatusCancelled)

	w := doRequest(t, r, "GET", "/api/drivers/stats", tokenFor(t, driver), nil)
	require.Equal(t, 200, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["completedOrders"])
	assert.EqualValues(t, 1, body["activeOrders"])
	assert.EqualValues(t, 150, body["totalEarnings"])
}
