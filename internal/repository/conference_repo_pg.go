package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConferenceRepository interface {
	Add(ctx context.Context, conference domain.Conference) (*domain.Conference, error)
	GetByName(ctx context.Context, name string) (*domain.Conference, error)
	List(ctx context.Context) ([]domain.Conference, error)
	DecrementSlot(ctx context.Context, name string) error
	IncrementSlot(ctx context.Context, name string) error
	OverlappingNames(ctx context.Context, name string) ([]string, error)
	WithTx(tx pgx.Tx) ConferenceRepository
}

type PGConferenceRepository struct {
	db Querier
}

func NewConferenceRepository(db *pgxpool.Pool) ConferenceRepository {
	return &PGConferenceRepository{db: db}
}

func (r *PGConferenceRepository) WithTx(tx pgx.Tx) ConferenceRepository {
	return &PGConferenceRepository{db: tx}
}

func (r *PGConferenceRepository) Add(ctx context.Context, conference domain.Conference) (*domain.Conference, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO conferences (name, location, topics, start_time, end_time, available_slots)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		conference.Name, conference.Location, conference.Topics, conference.StartTime, conference.EndTime, conference.AvailableSlots)
	if err := row.Scan(&conference.CreatedAt, &conference.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConferenceExists
		}
		return nil, opFailed("add conference", err)
	}
	return &conference, nil
}

func (r *PGConferenceRepository) GetByName(ctx context.Context, name string) (*domain.Conference, error) {
	row := r.db.QueryRow(ctx, `SELECT name, location, topics, start_time, end_time, available_slots, created_at, updated_at FROM conferences WHERE name=$1`, name)
	var c domain.Conference
	if err := row.Scan(&c.Name, &c.Location, &c.Topics, &c.StartTime, &c.EndTime, &c.AvailableSlots, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, opFailed("get conference", err)
	}
	return &c, nil
}

func (r *PGConferenceRepository) List(ctx context.Context) ([]domain.Conference, error) {
	rows, err := r.db.Query(ctx, `SELECT name, location, topics, start_time, end_time, available_slots, created_at, updated_at FROM conferences ORDER BY start_time`)
	if err != nil {
		return nil, opFailed("list conferences", err)
	}
	defer rows.Close()

	conferences := make([]domain.Conference, 0)
	for rows.Next() {
		var c domain.Conference
		if err := rows.Scan(&c.Name, &c.Location, &c.Topics, &c.StartTime, &c.EndTime, &c.AvailableSlots, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, opFailed("scan conference", err)
		}
		conferences = append(conferences, c)
	}
	if err := rows.Err(); err != nil {
		return nil, opFailed("list conferences", err)
	}
	return conferences, nil
}

// DecrementSlot takes one seat off the counter. The guard lives in the
// UPDATE itself, so concurrent decrements serialize on the row lock and the
// counter can never go below zero.
func (r *PGConferenceRepository) DecrementSlot(ctx context.Context, name string) error {
	res, err := r.db.Exec(ctx, `UPDATE conferences SET available_slots = available_slots - 1, updated_at = now() WHERE name=$1 AND available_slots > 0`, name)
	if err != nil {
		return opFailed("decrement slot", err)
	}
	if res.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM conferences WHERE name=$1)`, name).Scan(&exists); err != nil {
			return opFailed("decrement slot", err)
		}
		if !exists {
			return domain.ErrConferenceNotFound
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *PGConferenceRepository) IncrementSlot(ctx context.Context, name string) error {
	res, err := r.db.Exec(ctx, `UPDATE conferences SET available_slots = available_slots + 1, updated_at = now() WHERE name=$1`, name)
	if err != nil {
		return opFailed("increment slot", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrConferenceNotFound
	}
	return nil
}

// OverlappingNames returns every conference whose [start, end) interval
// intersects the named conference's interval, the named one included.
func (r *PGConferenceRepository) OverlappingNames(ctx context.Context, name string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT other.name
		FROM conferences base
		JOIN conferences other ON base.start_time < other.end_time AND other.start_time < base.end_time
		WHERE base.name=$1`, name)
	if err != nil {
		return nil, opFailed("overlapping conferences", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, opFailed("scan overlapping conference", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, opFailed("overlapping conferences", err)
	}
	// The named conference always overlaps itself, so an empty result
	// means the row does not exist.
	if len(names) == 0 {
		return nil, domain.ErrConferenceNotFound
	}
	return names, nil
}

var _ ConferenceRepository = (*PGConferenceRepository)(nil)
