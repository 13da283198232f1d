package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, userID, conferenceName string, status domain.BookingStatus) (*domain.Booking, error)
	ByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ByID(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	WithTx(tx pgx.Tx) BookingRepository
}

type PGBookingRepository struct {
	db Querier
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) WithTx(tx pgx.Tx) BookingRepository {
	return &PGBookingRepository{db: tx}
}

func (r *PGBookingRepository) Create(ctx context.Context, userID, conferenceName string, status domain.BookingStatus) (*domain.Booking, error) {
	booking := domain.Booking{
		ID:             uuid.NewString(),
		ConferenceName: conferenceName,
		UserID:         userID,
		Status:         status,
	}
	row := r.db.QueryRow(ctx, `INSERT INTO bookings (id, conference_name, user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, booking.ID, booking.ConferenceName, booking.UserID, booking.Status)
	if err := row.Scan(&booking.CreatedAt); err != nil {
		return nil, opFailed("create booking", err)
	}
	return &booking, nil
}

func (r *PGBookingRepository) ByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT id, conference_name, user_id, status, created_at FROM bookings WHERE user_id=$1`, userID)
	if err != nil {
		return nil, opFailed("bookings by user", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.ConferenceName, &b.UserID, &b.Status, &b.CreatedAt); err != nil {
			return nil, opFailed("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, opFailed("bookings by user", err)
	}
	return bookings, nil
}

func (r *PGBookingRepository) ByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, conference_name, user_id, status, created_at FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ConferenceName, &b.UserID, &b.Status, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, opFailed("get booking", err)
	}
	return &b, nil
}

// UpdateStatus performs the raw transition. The service layer owns the
// state machine; no validation happens here.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return opFailed("update booking status", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
