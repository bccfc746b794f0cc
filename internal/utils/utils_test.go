package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/campushub/internal/domain/resource"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name      string
		page, per string
		wantPage  int
		wantPer   int
		wantErr   error
	}{
		{"defaults", "", "", 1, 12, nil},
		{"explicit", "3", "20", 3, 20, nil},
		{"clamped", "1", "500", 1, 50, nil},
		{"zero page", "0", "", 0, 0, ErrInvalidPage},
		{"garbage page", "abc", "", 0, 0, ErrInvalidPage},
		{"negative per page", "1", "-4", 0, 0, ErrInvalidPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, per, err := ParsePage(tt.page, tt.per, resource.DefaultPerPage, resource.MaxPerPage)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if page != tt.wantPage || per != tt.wantPer {
				t.Fatalf("got (%d, %d), want (%d, %d)", page, per, tt.wantPage, tt.wantPer)
			}
		})
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("3f1c1b7e-8f0a-4d39-9b55-6a2b8c0c1d2e") {
		t.Fatalf("expected canonical uuid to be valid")
	}
	for _, bad := range []string{"", "room-r", "3f1c1b7e8f0a4d399b556a2b8c0c1d2e", "{3f1c1b7e-8f0a-4d39-9b55-6a2b8c0c1d2e}"} {
		if IsUUID(bad) {
			t.Errorf("IsUUID(%q) = true", bad)
		}
	}
}

func TestResourcesListCacheKey(t *testing.T) {
	room := resource.TypeRoom
	q := "  Study "

	key := BuildResourcesListCacheKey(resource.ListFilter{Type: &room, Search: &q, OnlyAvailable: true, Page: 2, PerPage: 12})

	if !strings.HasPrefix(key, ResourcesCachePrefix) {
		t.Fatalf("key %q must share the invalidation prefix", key)
	}
	if !strings.Contains(key, ":type=room:q=study:page=2:per=12") {
		t.Fatalf("unexpected key %q", key)
	}

	other := BuildResourcesListCacheKey(resource.ListFilter{OnlyAvailable: true, Page: 2, PerPage: 12})
	if other == key {
		t.Fatalf("different filters must not share a key")
	}
}
