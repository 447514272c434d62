package handlers

import (
	"fmt"
	"testing"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHistoryRestrictedToParticipants(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	customer := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)
	driver := createTestUser(t, db, "Omar Driver", "0922222222", models.RoleDriver)
	stranger := createTestUser(t, db, "Nasser Other", "0933333333", models.RoleCustomer)

	order := createTestOrder(t, db, customer, driver, models.OrderStatusAccepted)
	require.NoError(t, db.Create(&models.Message{
		OrderID:     order.ID,
		SenderID:    driver.ID,
		Content:     "On my way",
		MessageType: models.MessageTypeText,
	}).Error)

	path := fmt.Sprintf("/api/chat/%d", order.ID)

	w := doRequest(t, r, "GET", path, tokenFor(t, stranger), nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(t, r, "GET", path, tokenFor(t, customer), nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "On my way")

	w = doRequest(t, r, "GET", path, tokenFor(t, driver), nil)
	assert.Equal(t, 200, w.Code)

	w = doRequest(t, r, "GET", "/api/chat/999999", tokenFor(t, customer), nil)
	assert.Equal(t, 404, w.Code)

	w = doRequest(t, r, "GET", "/api/chat/abc", tokenFor(t, customer), nil)
	assert.Equal(t, 400, w.Code)
}

func TestChatWebSocketRejectsNonParticipants(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	customer := createTestUser(t, db, "Ali Customer", "0911111111", models.RoleCustomer)
	driver := createTestUser(t, db, "Omar Driver", "0922222222", models.RoleDriver)
	stranger := createTestUser(t, db, "Nasser Other", "0933333333", models.RoleCustomer)

	order := createTestOrder(t, db, customer, driver, models.OrderStatusAccepted)

	// The participant check runs before the upgrade, so a stranger is
	// turned away with a plain JSON error
	w := doRequest(t, r, "GET", fmt.Sprintf("/api/chat/ws/%d", order.ID), tokenFor(t, stranger), nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(t, r, "GET", "/api/chat/ws/999999", tokenFor(t, customer), nil)
	assert.Equal(t, 404, w.Code)

	w = doRequest(t, r, "GET", fmt.Sprintf("/api/chat/ws/%d", order.ID), "", nil)
	assert.Equal(t, 401, w.Code)
}
