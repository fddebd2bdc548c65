package model

import "time"

type DeliveryStatus string

const (
	DeliveryQueued    DeliveryStatus = "Queued"
	DeliverySending   DeliveryStatus = "Sending"   // worker holds the lock and is posting
	DeliveryDelivered DeliveryStatus = "Delivered" // gateway accepted or confirmed via receipt
	DeliveryFailed    DeliveryStatus = "Failed"    // gave up after max attempts, or gateway rejected
)

// IsTerminal reports whether no further delivery work happens for this status.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryFailed
}

// Delivery tracks pushing one notification to the outbound gateway.
type Delivery struct {
	ID             string         `json:"id"`
	NotificationID int64          `json:"notification_id"`
	Status         DeliveryStatus `json:"status"`
	Attempts       int            `json:"attempts"`
	LastError      *string        `json:"last_error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
