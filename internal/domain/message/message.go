package message

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("message not found")

// Message belongs to exactly one booking thread and is never edited.
type Message struct {
	ID        string    `json:"id"`
	BookingID string    `json:"bookingId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateRequest struct {
	Content string `json:"content" binding:"required,min=1,max=4000"`
}

func New(bookingID, senderID, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
