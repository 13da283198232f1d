package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusWaitlisted BookingStatus = "WAITLISTED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

type Booking struct {
	ID             string
	ConferenceName string
	UserID         string
	Status         BookingStatus
	CreatedAt      time.Time
}

func (b Booking) IsConfirmed() bool  { return b.Status == BookingStatusConfirmed }
func (b Booking) IsWaitlisted() bool { return b.Status == BookingStatusWaitlisted }
func (b Booking) IsCancelled() bool  { return b.Status == BookingStatusCancelled }

// WaitlistRecord exists iff its booking is WAITLISTED. OfferExpiresAt is
// non-nil iff OfferSent is true.
type WaitlistRecord struct {
	BookingID      string
	UserID         string
	ConferenceName string
	EnqueuedAt     time.Time
	OfferSent      bool
	OfferExpiresAt *time.Time
}

// HasOpenOffer reports whether the record carries an offer that can still
// be accepted at the given instant.
func (r WaitlistRecord) HasOpenOffer(now time.Time) bool {
	return r.OfferSent && r.OfferExpiresAt != nil && r.OfferExpiresAt.After(now)
}

// BookingStatusView is the status shape returned at the API boundary. The
// offer fields are set only for waitlisted bookings.
type BookingStatusView struct {
	ID               string
	Status           BookingStatus
	OfferOutstanding *bool
	OfferExpiresAt   *time.Time
}
