package entity

import "time"

// Item is a car listing inside a room. Externally owned; the core reads it
// only to snapshot listing details into an item-details message.
type Item struct {
	ID        string    `json:"id" firestore:"id"`
	RoomID    string    `json:"room_id" firestore:"roomId"`
	Title     string    `json:"title" firestore:"title"`
	Price     float64   `json:"price" firestore:"price"`
	ImageURL  string    `json:"image_url,omitempty" firestore:"imageURL,omitempty"`
	Status    string    `json:"status" firestore:"status"` // "available", "booked", "sold"
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
