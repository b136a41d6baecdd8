package models

import "time"

// SentEmail is one simulated delivery kept in the outbox.
type SentEmail struct {
	ID        int64     `json:"id"`
	TeamID    string    `json:"teamId"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
