package security

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("student123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "student123" {
		t.Fatalf("hash must not equal the plain text")
	}

	if err := CheckPassword(hash, "student123"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}
