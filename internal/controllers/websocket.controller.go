package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (the service has no authentication layer)
		return true
	},
}

// WebSocketController upgrades connections and wires them into the hub.
type WebSocketController struct {
	Hub *services.Hub
}

func NewWebSocketController(hub *services.Hub) *WebSocketController {
	return &WebSocketController{Hub: hub}
}

// Handle upgrades the request and starts the client's read and write
// pumps.
func (wc *WebSocketController) Handle(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade error from %s: %v", c.ClientIP(), err)
		return
	}

	client := &services.Client{
		ID:   uuid.NewString(),
		Send: make(chan services.Message, 256),
	}
	wc.Hub.Register(client)

	go wc.writePump(client, ws)
	go wc.readPump(client, ws)
}

// readPump drains inbound frames until the client goes away.
func (wc *WebSocketController) readPump(client *services.Client, conn *websocket.Conn) {
	defer func() {
		wc.Hub.Unregister(client.ID)
		conn.Close()
	}()

	conn.SetPongHandler(func(string) error {
		return nil
	})

	for {
		var msg services.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			pong := services.Message{Type: "pong", Timestamp: time.Now()}
			select {
			case client.Send <- pong:
			default:
			}

		case "unsubscribe":
			return

		default:
			// Clients only receive; other inbound frames are ignored
		}
	}
}

// writePump forwards hub frames to the connection. A closed send channel
// means the hub dropped the client; say goodbye and hang up.
func (wc *WebSocketController) writePump(client *services.Client, conn *websocket.Conn) {
	defer conn.Close()

	for msg := range client.Send {
		if err := conn.WriteJSON(msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] write error: %v", err)
			}
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage, []byte{})
}
