package booking

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start.UTC(), End: end.UTC()}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() || !iv.Start.Before(iv.End) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps is strict intersection: touching intervals do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// ConflictQuery describes a conflict lookup against one resource.
// An empty Statuses means ActiveStatuses.
type ConflictQuery struct {
	ResourceID string
	Interval   Interval
	Statuses   []Status
	ExcludeID  string
}

func (q ConflictQuery) statuses() []Status {
	if len(q.Statuses) == 0 {
		return ActiveStatuses
	}
	return q.Statuses
}

// StatusSet returns the effective status filter of the query.
func (q ConflictQuery) StatusSet() []Status {
	return q.statuses()
}

// HasConflict checks existing bookings in memory with the same rule the
// storage layer applies in SQL.
func HasConflict(existing []Booking, q ConflictQuery) bool {
	statuses := q.statuses()

	for _, b := range existing {
		if b.ResourceID != q.ResourceID || b.ID == q.ExcludeID {
			continue
		}
		if !containsStatus(statuses, b.Status) {
			continue
		}
		if b.Interval().Overlaps(q.Interval) {
			return true
		}
	}
	return false
}

func containsStatus(set []Status, s Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
