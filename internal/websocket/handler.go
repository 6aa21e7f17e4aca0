package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from the peer. Inbound edit frames go to
// the sink; accepted suggestions come back through the hub.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID uuid.UUID, sink EditSink) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, 256), Sink: sink}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
