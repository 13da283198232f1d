package domain

import "time"

type Conference struct {
	Name           string
	Location       string
	Topics         string
	StartTime      time.Time
	EndTime        time.Time
	AvailableSlots int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Overlaps reports whether the two conference intervals intersect,
// using strict [start, end) overlap.
func (c Conference) Overlaps(other Conference) bool {
	return c.StartTime.Before(other.EndTime) && other.StartTime.Before(c.EndTime)
}

func (c Conference) HasSlot() bool {
	return c.AvailableSlots > 0
}

// IsStillOpen reports whether the conference has not started yet.
// Booking and cancellation are both rejected once it has.
func (c Conference) IsStillOpen(now time.Time) bool {
	return c.StartTime.After(now)
}

type User struct {
	ID        string
	Topics    string
	CreatedAt time.Time
}
