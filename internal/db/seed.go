package db

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/message"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/review"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeedReport struct {
	Users     int
	Resources int
	Bookings  int
	Reviews   int
	Messages  int
}

type demoUser struct {
	email, password, first, last string
	role                         user.Role
}

var demoUsers = []demoUser{
	{"admin@campus.edu", "admin123", "Admin", "User", user.RoleAdmin},
	{"staff@campus.edu", "staff123", "Staff", "Member", user.RoleStaff},
	{"student@campus.edu", "student123", "Student", "User", user.RoleStudent},
	{"john.doe@campus.edu", "password123", "John", "Doe", user.RoleStudent},
}

var demoResources = []resource.CreateRequest{
	{Name: "Conference Room A", Description: "Large conference room with projector, whiteboard, and seating for 20 people.", Type: resource.TypeRoom, Location: "Building 1, Floor 2, Room 201", Capacity: 20},
	{Name: "Study Room 101", Description: "Quiet study space with individual desks, power outlets, and whiteboard.", Type: resource.TypeRoom, Location: "Library, Floor 1, Room 101", Capacity: 4},
	{Name: "Study Room 102", Description: "Group study room with large table and presentation screen.", Type: resource.TypeRoom, Location: "Library, Floor 1, Room 102", Capacity: 8},
	{Name: "Laptop Cart", Description: "Mobile laptop cart with 20 laptops, charging station, and WiFi hotspot.", Type: resource.TypeEquipment, Location: "IT Department", Capacity: 20},
	{Name: "3D Printer", Description: "3D printer for prototyping and educational projects. Includes PLA filament.", Type: resource.TypeEquipment, Location: "Engineering Lab, Room 305", Capacity: 1, HourlyRate: 5},
	{Name: "Outdoor Pavilion", Description: "Covered outdoor space with picnic tables, power outlets, and WiFi access.", Type: resource.TypeSpace, Location: "Central Quad", Capacity: 50},
	{Name: "Recording Studio", Description: "Recording studio with audio equipment, microphones, and soundproofing.", Type: resource.TypeRoom, Location: "Media Center, Floor 2", Capacity: 6, HourlyRate: 10},
	{Name: "Computer Lab 1", Description: "Computer lab with 25 workstations, projector, and printing facilities.", Type: resource.TypeRoom, Location: "Computer Science Building, Floor 1", Capacity: 25},
	{Name: "VR Headset Set", Description: "Set of 4 VR headsets with controllers and gaming PC setup.", Type: resource.TypeEquipment, Location: "Gaming Lab, Room 205", Capacity: 4, HourlyRate: 15},
	{Name: "Art Studio", Description: "Art studio with easels, supplies, and natural lighting.", Type: resource.TypeRoom, Location: "Fine Arts Building, Floor 2", Capacity: 12},
}

// SeedDemo inserts the demo campus in one transaction. It is a no-op when
// any user other than a bootstrap admin already exists.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool, now time.Time) (rep SeedReport, err error) {
	var existing int
	if err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role <> 'admin'`).Scan(&existing); err != nil {
		return rep, err
	}
	if existing > 0 {
		return rep, nil
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return rep, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ids := make(map[string]string, len(demoUsers))
	for _, du := range demoUsers {
		hash, err := security.HashPassword(du.password)
		if err != nil {
			return rep, err
		}

		id := uuid.NewString()
		err = tx.QueryRow(ctx, `
			INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$7)
			ON CONFLICT (email) DO UPDATE SET updated_at = users.updated_at
			RETURNING id`,
			id, du.email, hash, du.first, du.last, string(du.role), now,
		).Scan(&id)
		if err != nil {
			return rep, fmt.Errorf("seed user %s: %w", du.email, err)
		}
		ids[du.email] = id
		rep.Users++
	}

	staffID := ids["staff@campus.edu"]
	student := ids["student@campus.edu"]
	john := ids["john.doe@campus.edu"]

	res := make([]resource.Resource, 0, len(demoResources))
	for _, req := range demoResources {
		r := resource.NewFromCreateRequest(req, staffID)
		_, err = tx.Exec(ctx, `
			INSERT INTO resources (id, name, description, resource_type, location, capacity,
				hourly_rate, is_available, owner_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			r.ID, r.Name, r.Description, string(r.Type), r.Location, r.Capacity,
			r.HourlyRate, r.IsAvailable, r.OwnerID, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return rep, fmt.Errorf("seed resource %s: %w", r.Name, err)
		}
		res = append(res, r)
		rep.Resources++
	}

	day := now.UTC().Truncate(24 * time.Hour)
	slot := func(days, from, to int) (time.Time, time.Time) {
		base := day.AddDate(0, 0, days)
		return base.Add(time.Duration(from) * time.Hour), base.Add(time.Duration(to) * time.Hour)
	}

	type demoBooking struct {
		userID   string
		resource resource.Resource
		days     int
		from, to int
		status   booking.Status
		purpose  string
	}

	demoBookings := []demoBooking{
		{student, res[1], 1, 14, 16, booking.StatusConfirmed, "Group study session for Calculus exam"},
		{student, res[0], 1, 10, 12, booking.StatusPending, "Project presentation rehearsal"},
		{john, res[2], 2, 9, 11, booking.StatusConfirmed, "Team project meeting"},
		{john, res[4], 3, 13, 15, booking.StatusPending, "Prototype printing for engineering project"},
	}

	bookings := make([]booking.Booking, 0, len(demoBookings))
	for _, d := range demoBookings {
		start, end := slot(d.days, d.from, d.to)
		b := booking.New(booking.CreateRequest{
			ResourceID: d.resource.ID,
			StartTime:  start,
			EndTime:    end,
			Purpose:    d.purpose,
		}, d.userID, now)
		b.Status = d.status

		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (id, user_id, resource_id, start_time, end_time, status, purpose, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			b.ID, b.UserID, b.ResourceID, b.StartTime, b.EndTime, string(b.Status), b.Purpose, b.CreatedAt, b.UpdatedAt,
		)
		if err != nil {
			return rep, fmt.Errorf("seed booking %q: %w", b.Purpose, err)
		}
		bookings = append(bookings, b)
		rep.Bookings++
	}

	reviews := []review.Review{
		review.New(student, res[1].ID, review.CreateRequest{Rating: 5, Comment: "Perfect quiet space for studying. Great lighting and comfortable chairs."}),
		review.New(student, res[0].ID, review.CreateRequest{Rating: 4, Comment: "Excellent facilities. The projector sometimes has connectivity issues."}),
		review.New(john, res[2].ID, review.CreateRequest{Rating: 5, Comment: "Spacious room perfect for group work."}),
		review.New(john, res[4].ID, review.CreateRequest{Rating: 4, Comment: "Good print quality and helpful staff."}),
	}
	for _, rv := range reviews {
		_, err = tx.Exec(ctx, `
			INSERT INTO reviews (id, user_id, resource_id, rating, comment, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			rv.ID, rv.UserID, rv.ResourceID, rv.Rating, rv.Comment, rv.CreatedAt,
		)
		if err != nil {
			return rep, fmt.Errorf("seed review: %w", err)
		}
		rep.Reviews++
	}

	messages := []message.Message{
		message.New(bookings[1].ID, student, "Hi, I would like to request this room for our presentation rehearsal. We need the projector and whiteboard."),
		message.New(bookings[1].ID, staffID, "The room is free and all equipment is working. I will confirm shortly."),
		message.New(bookings[3].ID, john, "I need to print a prototype for my engineering project. Could you please confirm the booking?"),
	}
	for _, m := range messages {
		_, err = tx.Exec(ctx, `
			INSERT INTO messages (id, booking_id, sender_id, content, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			m.ID, m.BookingID, m.SenderID, m.Content, m.CreatedAt,
		)
		if err != nil {
			return rep, fmt.Errorf("seed message: %w", err)
		}
		rep.Messages++
	}

	if err = tx.Commit(ctx); err != nil {
		return SeedReport{}, err
	}
	return rep, nil
}
