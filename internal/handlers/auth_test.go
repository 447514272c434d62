package handlers

import (
	"testing"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doRequest(t, r, "POST", "/api/auth/register", "", map[string]interface{}{
		"fullName": "Ali Customer",
		"phone":    "0911111111",
		"password": "secret123",
	})
	require.Equal(t, 201, w.Code)

	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, models.RoleCustomer, user["role"])
	assert.NotContains(t, w.Body.String(), "password")

	// Duplicate phone is rejected
	w = doRequest(t, r, "POST", "/api/auth/register", "", map[string]interface{}{
		"fullName": "Someone Else",
		"phone":    "0911111111",
		"password": "secret123",
	})
	assert.Equal(t, 400, w.Code)
}

func TestRegisterDriverCreatesProfile(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doRequest(t, r, "POST", "/api/auth/register", "", map[string]interface{}{
		"fullName": "Omar Driver",
		"phone":    "0922222222",
		"password": "secret123",
		"role":     "driver",
	})
	require.Equal(t, 201, w.Code)

	var user models.User
	require.NoError(t, db.Where("phone = ?", "0922222222").First(&user).Error)

	var profile models.DriverProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Standard", profile.TruckType)
	assert.Equal(t, 10000, profile.Capacity)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doRequest(t, r, "POST", "/api/auth/register", "", map[string]interface{}{
		"fullName": "Sneaky",
		"phone":    "0933333333",
		"password": "secret123",
		"role":     "admin",
	})
	assert.Equal(t, 400, w.Code)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	user := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)

	w := doRequest(t, r, "POST", "/api/auth/login", "", map[string]interface{}{
		"phone":    user.Phone,
		"password": "secret123",
	})
	require.Equal(t, 200, w.Code)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, models.RoleCustomer, body["role"])
	assert.Equal(t, "Ali Customer", body["fullName"])

	// Wrong password
	w = doRequest(t, r, "POST", "/api/auth/login", "", map[string]interface{}{
		"phone":    user.Phone,
		"password": "wrong",
	})
	assert.Equal(t, 401, w.Code)

	// Unknown phone
	w = doRequest(t, r, "POST", "/api/auth/login", "", map[string]interface{}{
		"phone":    "0999999999",
		"password": "secret123",
	})
	assert.Equal(t, 401, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doRequest(t, r, "GET", "/api/orders/my", "", nil)
	assert.Equal(t, 401, w.Code)

	w = doRequest(t, r, "GET", "/api/orders/my", "not-a-token", nil)
	assert.Equal(t, 401, w.Code)
}
