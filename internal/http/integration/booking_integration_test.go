package integration_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/domain/user"
)

type bookingResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func slot(day, hour int) time.Time {
	base := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, day)
	return base.Add(time.Duration(hour) * time.Hour)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "staff@campus.edu", user.RoleStaff)
	env.createUser(t, "u@campus.edu", user.RoleStudent)
	env.createUser(t, "v@campus.edu", user.RoleStudent)
	room := env.createResource(t, staff.ID, "Study Room A")

	uTok := env.login(t, "u@campus.edu")
	vTok := env.login(t, "v@campus.edu")
	staffTok := env.login(t, "staff@campus.edu")

	create := func(tok string, from, to time.Time) (int, bookingResp) {
		w := env.do(t, http.MethodPost, "/bookings", tok, map[string]any{
			"resourceId": room.ID,
			"startTime":  from,
			"endTime":    to,
			"purpose":    "study group",
		})
		var b bookingResp
		if w.Code == http.StatusCreated {
			decode(t, w, &b)
		}
		return w.Code, b
	}

	code, b1 := create(uTok, slot(2, 10), slot(2, 12))
	if code != http.StatusCreated || b1.Status != "pending" {
		t.Fatalf("first booking: %d %+v", code, b1)
	}

	if code, _ := create(vTok, slot(2, 11), slot(2, 13)); code != http.StatusConflict {
		t.Fatalf("overlapping booking: %d", code)
	}

	if code, _ := create(vTok, slot(2, 12), slot(2, 13)); code != http.StatusCreated {
		t.Fatalf("touching booking: %d", code)
	}

	// students cannot approve
	w := env.do(t, http.MethodPatch, "/bookings/"+b1.ID+"/status", vTok, map[string]string{"status": "confirmed"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("student confirm: %d", w.Code)
	}

	w = env.do(t, http.MethodPatch, "/bookings/"+b1.ID+"/status", staffTok, map[string]string{"status": "confirmed"})
	if w.Code != http.StatusOK {
		t.Fatalf("staff confirm: %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/resources/"+room.ID+"/bookings", "", nil)
	if w.Code != http.StatusOK || w.Header().Get("ETag") == "" {
		t.Fatalf("feed: %d etag=%q", w.Code, w.Header().Get("ETag"))
	}
	var feed []map[string]any
	decode(t, w, &feed)
	if len(feed) != 1 {
		t.Fatalf("feed should list the confirmed booking only, got %d", len(feed))
	}

	w = env.do(t, http.MethodPost, "/bookings/"+b1.ID+"/cancel", uTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}

	if code, _ := create(vTok, slot(2, 10), slot(2, 11)); code != http.StatusCreated {
		t.Fatalf("slot should be free after cancel: %d", code)
	}

	var jobs int
	if err := env.pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM jobs`).Scan(&jobs); err != nil {
		t.Fatalf("count jobs: %v", err)
	}
	// three creates, one confirm, one cancel
	if jobs != 5 {
		t.Fatalf("jobs = %d, want 5", jobs)
	}
}

func TestConcurrentBookingsOfOneSlot(t *testing.T) {
	env := setup(t)

	staff := env.createUser(t, "owner@campus.edu", user.RoleStaff)
	room := env.createResource(t, staff.ID, "Lab 1")

	const n = 8
	tokens := make([]string, n)
	for i := range tokens {
		email := "racer" + string(rune('a'+i)) + "@campus.edu"
		env.createUser(t, email, user.RoleStudent)
		tokens[i] = env.login(t, email)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[int]int{}
	)
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			w := env.do(t, http.MethodPost, "/bookings", tok, map[string]any{
				"resourceId": room.ID,
				"startTime":  slot(3, 9),
				"endTime":    slot(3, 10),
			})
			mu.Lock()
			codes[w.Code]++
			mu.Unlock()
		}(tok)
	}
	wg.Wait()

	if codes[http.StatusCreated] != 1 || codes[http.StatusConflict] != n-1 {
		t.Fatalf("codes = %v", codes)
	}
}
