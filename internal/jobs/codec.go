package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geocoder89/campushub/internal/domain/job"
)

func EncodePayload(t string, payload any) (json.RawMessage, error) {
	if !IsValidType(t) {
		return nil, ErrInvalidJobType
	}

	switch payload.(type) {
	case BookingNotificationPayload, *BookingNotificationPayload:
	default:
		return nil, ErrPayloadTypeMismatch
	}

	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return json.RawMessage(b), nil
}

// DecodePayload unmarshals job.Payload into the typed payload for its type.
func DecodePayload(j job.Job) (BookingNotificationPayload, error) {
	if !IsValidType(j.Type) {
		return BookingNotificationPayload{}, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return BookingNotificationPayload{}, ErrInvalidJobPayload
	}

	var p BookingNotificationPayload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return BookingNotificationPayload{}, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	if err := ValidatePayload(j.Type, p); err != nil {
		return BookingNotificationPayload{}, err
	}
	return p, nil
}

func ValidatePayload(t string, payload any) error {
	if !IsValidType(t) {
		return ErrInvalidJobType
	}

	var p BookingNotificationPayload
	switch v := payload.(type) {
	case BookingNotificationPayload:
		p = v
	case *BookingNotificationPayload:
		p = *v
	default:
		return ErrPayloadTypeMismatch
	}

	trim := strings.TrimSpace
	if trim(p.BookingID) == "" || trim(p.RecipientID) == "" || trim(p.RecipientEmail) == "" {
		return ErrInvalidJobPayload
	}
	if t == TypeBookingStatusChanged && trim(p.Status) == "" {
		return ErrInvalidJobPayload
	}
	return nil
}
