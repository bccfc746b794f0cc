package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/domain/job"
)

func validPayload() BookingNotificationPayload {
	return BookingNotificationPayload{
		BookingID:      "booking-1",
		ResourceID:     "resource-1",
		ResourceName:   "Study Room 101",
		RecipientID:    "user-1",
		RecipientEmail: "student@campus.edu",
		RecipientName:  "Student User",
		Status:         "confirmed",
		StartTime:      time.Date(2030, 1, 1, 14, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2030, 1, 1, 16, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecode_StatusChanged(t *testing.T) {
	raw, err := EncodePayload(TypeBookingStatusChanged, validPayload())
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j := job.New(job.CreateRequest{Type: TypeBookingStatusChanged, Payload: raw})

	p, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	if p.BookingID != "booking-1" || p.Status != "confirmed" {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if !p.StartTime.Equal(validPayload().StartTime) {
		t.Fatalf("start time lost in round trip: %v", p.StartTime)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(TypeBookingRequested, map[string]string{"bookingId": "b1"})
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodePayload_UnknownType(t *testing.T) {
	_, err := EncodePayload("event.publish", validPayload())
	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestValidatePayload_RequiredFields(t *testing.T) {
	p := validPayload()
	p.RecipientEmail = " "
	if err := ValidatePayload(TypeBookingRequested, p); !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}

	p = validPayload()
	p.Status = ""
	if err := ValidatePayload(TypeBookingStatusChanged, &p); !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected status to be required for status changes, got %v", err)
	}
	if err := ValidatePayload(TypeBookingRequested, &p); err != nil {
		t.Fatalf("status is optional for requests, got %v", err)
	}
}

func TestDecodePayload_Garbage(t *testing.T) {
	j := job.New(job.CreateRequest{Type: TypeBookingRequested, Payload: []byte(`{not json`)})
	if _, err := DecodePayload(j); !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}
}
