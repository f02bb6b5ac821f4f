package websocket

import "github.com/gofiber/websocket/v2"

// ServeWs registers the connection with the hub and pumps messages until
// the peer disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, userId string) {
	client := &Client{Hub: hub, Conn: c, UserId: userId, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
