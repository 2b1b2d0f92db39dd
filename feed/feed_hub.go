package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/utils"
)

// Event types
const (
	EventOrderFulfilled = "order_fulfilled"
	EventStaffNotif     = "staff_notification"
)

// writeWait bounds each write so a stalled client cannot block a broadcast.
const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// OrderNotice is the payload of an order_fulfilled event.
type OrderNotice struct {
	OrderID     uint      `json:"order_id"`
	Customer    string    `json:"customer"`
	RoomNumber  string    `json:"room_number"`
	Tel         string    `json:"tel"`
	Description string    `json:"description"`
	Total       string    `json:"total"`
	OrderedDate time.Time `json:"ordered_date"`
}

// Hub holds the staff websocket connections. Writes are serialised by mu.
type Hub struct {
	clients map[Conn]uint // conn -> staff user id
	mu      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]uint)}
}

func (h *Hub) Register(conn Conn, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = userID
}

// Unregister drops the connection and closes it.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastOrderFulfilled tells every connected staff client about a paid order.
func (h *Hub) BroadcastOrderFulfilled(order models.Order, user models.User) {
	h.Broadcast(Message{
		Event: EventOrderFulfilled,
		Data: OrderNotice{
			OrderID:     order.ID,
			Customer:    user.FullName(),
			RoomNumber:  user.RoomNumber,
			Tel:         user.Tel,
			Description: order.Description(),
			Total:       order.Total().StringFixed(2),
			OrderedDate: order.OrderedDate,
		},
	})
}

// BroadcastStaffNotification sends a free-text alert to connected staff.
func (h *Hub) BroadcastStaffNotification(message string) {
	h.Broadcast(Message{Event: EventStaffNotif, Data: message})
}

// Broadcast sends msg to all clients; a client that fails the write is dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling feed message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	utils.InfoLogger.WithFields(logrus.Fields{
		"event":   msg.Event,
		"clients": len(h.clients),
	}).Debug("Broadcasting feed message")

	for conn, userID := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Errorf("Error sending feed message to staff %d: %v", userID, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
