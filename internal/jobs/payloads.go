package jobs

import "time"

// BookingNotificationPayload is self-contained so the worker needs no lookups.
type BookingNotificationPayload struct {
	BookingID      string    `json:"bookingId"`
	ResourceID     string    `json:"resourceId"`
	ResourceName   string    `json:"resourceName"`
	RecipientID    string    `json:"recipientId"`
	RecipientEmail string    `json:"recipientEmail"`
	RecipientName  string    `json:"recipientName"`
	Status         string    `json:"status"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	ActorID        string    `json:"actorId,omitempty"`
	RequestedAt    time.Time `json:"requestedAt"`
}
