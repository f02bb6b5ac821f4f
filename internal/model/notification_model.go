package model

import "time"

// Notification is the payload pushed to connected clients over the
// websocket. It is delivered in-band only and not persisted; the Id
// lets clients deduplicate redeliveries.
type Notification struct {
	Id        string                 `json:"id"`
	UserId    string                 `json:"userId"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}
