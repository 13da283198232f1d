package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitlistRepository interface {
	Enqueue(ctx context.Context, booking domain.Booking) error
	OldestPending(ctx context.Context, conferenceName string) (*domain.WaitlistRecord, error)
	ByBookingID(ctx context.Context, bookingID string) (*domain.WaitlistRecord, error)
	MarkOffered(ctx context.Context, bookingID string, expiresAt time.Time) error
	ResetOffer(ctx context.Context, bookingID string) error
	Remove(ctx context.Context, bookingID string) error
	RemoveByUserAndConference(ctx context.Context, userID, conferenceName string) ([]domain.WaitlistRecord, error)
	ExpiredOffers(ctx context.Context, deadline time.Time) ([]domain.WaitlistRecord, error)
	WithTx(tx pgx.Tx) WaitlistRepository
}

type PGWaitlistRepository struct {
	db Querier
}

func NewWaitlistRepository(db *pgxpool.Pool) WaitlistRepository {
	return &PGWaitlistRepository{db: db}
}

func (r *PGWaitlistRepository) WithTx(tx pgx.Tx) WaitlistRepository {
	return &PGWaitlistRepository{db: tx}
}

func (r *PGWaitlistRepository) Enqueue(ctx context.Context, booking domain.Booking) error {
	_, err := r.db.Exec(ctx, `INSERT INTO waitlist (booking_id, user_id, conference_name, enqueued_at, offer_sent)
		VALUES ($1, $2, $3, now(), false)`, booking.ID, booking.UserID, booking.ConferenceName)
	if err != nil {
		return opFailed("enqueue waitlist entry", err)
	}
	return nil
}

// OldestPending returns the earliest enqueued entry without an outstanding
// offer, or nil when every entry has been offered or the queue is empty.
// Earliest enqueued_at wins; an expired offer re-enters at the back because
// ResetOffer re-stamps the timestamp.
func (r *PGWaitlistRepository) OldestPending(ctx context.Context, conferenceName string) (*domain.WaitlistRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT booking_id, user_id, conference_name, enqueued_at, offer_sent, offer_expires_at
		FROM waitlist
		WHERE conference_name=$1 AND offer_sent=false
		ORDER BY enqueued_at ASC
		LIMIT 1`, conferenceName)
	var rec domain.WaitlistRecord
	if err := row.Scan(&rec.BookingID, &rec.UserID, &rec.ConferenceName, &rec.EnqueuedAt, &rec.OfferSent, &rec.OfferExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, opFailed("oldest pending waitlist entry", err)
	}
	return &rec, nil
}

func (r *PGWaitlistRepository) ByBookingID(ctx context.Context, bookingID string) (*domain.WaitlistRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT booking_id, user_id, conference_name, enqueued_at, offer_sent, offer_expires_at
		FROM waitlist WHERE booking_id=$1`, bookingID)
	var rec domain.WaitlistRecord
	if err := row.Scan(&rec.BookingID, &rec.UserID, &rec.ConferenceName, &rec.EnqueuedAt, &rec.OfferSent, &rec.OfferExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.WrongRequest("booking is not in waitlisting")
		}
		return nil, opFailed("waitlist entry by booking", err)
	}
	return &rec, nil
}

// MarkOffered stamps the offer on a pending entry. The offer_sent=false
// predicate makes the row itself the arbiter between concurrent
// promoters: the loser matches zero rows and its transaction rolls back.
func (r *PGWaitlistRepository) MarkOffered(ctx context.Context, bookingID string, expiresAt time.Time) error {
	res, err := r.db.Exec(ctx, `UPDATE waitlist SET offer_sent=true, offer_expires_at=$1 WHERE booking_id=$2 AND offer_sent=false`, expiresAt, bookingID)
	if err != nil {
		return opFailed("mark waitlist offer", err)
	}
	if res.RowsAffected() == 0 {
		log.Printf("repository: mark waitlist offer: entry %s already offered or gone", bookingID)
		return domain.ErrOperationFailed
	}
	return nil
}

// ResetOffer clears the offer and re-stamps enqueued_at, sending the entry
// to the back of the queue. Resetting an already reset or missing entry is
// a no-op.
func (r *PGWaitlistRepository) ResetOffer(ctx context.Context, bookingID string) error {
	_, err := r.db.Exec(ctx, `UPDATE waitlist SET offer_sent=false, offer_expires_at=NULL, enqueued_at=now() WHERE booking_id=$1`, bookingID)
	if err != nil {
		return opFailed("reset waitlist offer", err)
	}
	return nil
}

func (r *PGWaitlistRepository) Remove(ctx context.Context, bookingID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM waitlist WHERE booking_id=$1`, bookingID)
	if err != nil {
		return opFailed("remove waitlist entry", err)
	}
	return nil
}

// RemoveByUserAndConference deletes every entry the user holds for the
// conference and returns the deleted records, so the caller can settle any
// outstanding offer they carried.
func (r *PGWaitlistRepository) RemoveByUserAndConference(ctx context.Context, userID, conferenceName string) ([]domain.WaitlistRecord, error) {
	rows, err := r.db.Query(ctx, `DELETE FROM waitlist WHERE user_id=$1 AND conference_name=$2
		RETURNING booking_id, user_id, conference_name, enqueued_at, offer_sent, offer_expires_at`, userID, conferenceName)
	if err != nil {
		return nil, opFailed("remove waitlist entries for user", err)
	}
	defer rows.Close()

	var removed []domain.WaitlistRecord
	for rows.Next() {
		var rec domain.WaitlistRecord
		if err := rows.Scan(&rec.BookingID, &rec.UserID, &rec.ConferenceName, &rec.EnqueuedAt, &rec.OfferSent, &rec.OfferExpiresAt); err != nil {
			return nil, opFailed("scan removed waitlist entry", err)
		}
		removed = append(removed, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, opFailed("remove waitlist entries for user", err)
	}
	return removed, nil
}

// ExpiredOffers lists entries whose offer deadline has passed without an
// acceptance. The worker sweep re-drives expiry for them, which covers
// timers lost to a process restart.
func (r *PGWaitlistRepository) ExpiredOffers(ctx context.Context, deadline time.Time) ([]domain.WaitlistRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, user_id, conference_name, enqueued_at, offer_sent, offer_expires_at
		FROM waitlist
		WHERE offer_sent=true AND offer_expires_at <= $1`, deadline)
	if err != nil {
		return nil, opFailed("expired waitlist offers", err)
	}
	defer rows.Close()

	var expired []domain.WaitlistRecord
	for rows.Next() {
		var rec domain.WaitlistRecord
		if err := rows.Scan(&rec.BookingID, &rec.UserID, &rec.ConferenceName, &rec.EnqueuedAt, &rec.OfferSent, &rec.OfferExpiresAt); err != nil {
			return nil, opFailed("scan expired waitlist offer", err)
		}
		expired = append(expired, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, opFailed("expired waitlist offers", err)
	}
	return expired, nil
}

var _ WaitlistRepository = (*PGWaitlistRepository)(nil)
