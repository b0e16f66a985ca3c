package domain

import "time"

// Pin is a persisted point record on a board. The presence core never
// inspects pins; it only relays pin notifications as opaque payloads.
type Pin struct {
	ID            string    `json:"id"`
	BoardID       BoardID   `json:"boardId"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	Title         string    `json:"title,omitempty"`
	CreatedBy     UserID    `json:"created_by"`
	ColorSnapshot string    `json:"color_snapshot,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
