package entity

import "time"

// Room is a dealer's storefront. It is owned by the surrounding application;
// the messaging core reads it to resolve the administering user and to refuse
// operations on inactive rooms.
type Room struct {
	ID        string    `json:"id" firestore:"id"`
	AdminID   string    `json:"admin_id" firestore:"adminId"`
	Name      string    `json:"name" firestore:"name"`
	City      string    `json:"city,omitempty" firestore:"city,omitempty"`
	IsActive  bool      `json:"is_active" firestore:"isActive"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
