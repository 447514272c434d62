package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/botiapp/watertruck-backend/internal/models"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// ChatClient represents one WebSocket subscriber in an order's chat room
type ChatClient struct {
	UserID  uint
	OrderID uint
	Conn    *websocket.Conn
	Send    chan []byte
	hub     *ChatHub
	db      *gorm.DB
}

// ChatHub maintains the chat rooms, keyed by order id. All access to the
// room map goes through the mutex; Send channels are only closed while the
// write lock is held, so broadcasts never race a disconnect.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*ChatClient]bool
}

// NewChatHub creates an empty hub
func NewChatHub() *ChatHub {
	return &ChatHub{
		rooms: make(map[uint]map[*ChatClient]bool),
	}
}

// Register adds a client to an order's room
func (h *ChatHub) Register(client *ChatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.OrderID]
	if !ok {
		room = make(map[*ChatClient]bool)
		h.rooms[client.OrderID] = room
	}
	room[client] = true
	log.Printf("User %d joined chat for order %d", client.UserID, client.OrderID)
}

// Unregister removes a client from its room and closes its send channel.
// Empty rooms are dropped from the map.
func (h *ChatHub) Unregister(client *ChatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.OrderID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.rooms, client.OrderID)
	}
	log.Printf("User %d left chat for order %d", client.UserID, client.OrderID)
}

// Broadcast sends a message to every subscriber of one order's room,
// fire-and-forget. Subscribers with a full send buffer are skipped.
func (h *ChatHub) Broadcast(orderID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[orderID] {
		select {
		case client.Send <- message:
		default:
			log.Printf("Warning: could not send to user %d (channel full)", client.UserID)
		}
	}
}

// Subscribers returns the number of clients in an order's room
func (h *ChatHub) Subscribers(orderID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[orderID])
}

// ChatMessageIn is an inbound chat frame
type ChatMessageIn struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// ChatMessageOut is a broadcast chat frame
type ChatMessageOut struct {
	ID        uint      `json:"id"`
	OrderID   uint      `json:"orderId"`
	SenderID  uint      `json:"senderId"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// ServeChat upgrades the connection and joins the order's chat room
func ServeChat(hub *ChatHub, db *gorm.DB, w http.ResponseWriter, r *http.Request, orderID, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &ChatClient{
		UserID:  userID,
		OrderID: orderID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		hub:     hub,
		db:      db,
	}

	hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the room.
// Every inbound frame is persisted before it is broadcast.
func (c *ChatClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var in ChatMessageIn
		if err := json.Unmarshal(raw, &in); err != nil || in.Content == "" {
			// Plain text frames are accepted as-is
			in = ChatMessageIn{Content: string(raw), Type: models.MessageTypeText}
		}
		if in.Type == "" {
			in.Type = models.MessageTypeText
		}

		message := models.Message{
			OrderID:     c.OrderID,
			SenderID:    c.UserID,
			Content:     in.Content,
			MessageType: in.Type,
		}
		if err := c.db.Create(&message).Error; err != nil {
			log.Printf("Failed to persist chat message for order %d: %v", c.OrderID, err)
			continue
		}

		out, err := json.Marshal(ChatMessageOut{
			ID:        message.ID,
			OrderID:   message.OrderID,
			SenderID:  message.SenderID,
			Content:   message.Content,
			Type:      message.MessageType,
			CreatedAt: message.CreatedAt,
		})
		if err != nil {
			log.Printf("Error marshaling chat message: %v", err)
			continue
		}

		c.hub.Broadcast(c.OrderID, out)
	}
}

// writePump pumps messages from the room to the websocket connection
func (c *ChatClient) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
