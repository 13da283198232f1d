package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Add(ctx context.Context, user domain.User) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

type PGUserRepository struct {
	db Querier
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Add(ctx context.Context, user domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO users (user_id, topics) VALUES ($1, $2) RETURNING created_at`, user.ID, user.Topics)
	if err := row.Scan(&user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, opFailed("add user", err)
	}
	return &user, nil
}

func (r *PGUserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, topics, created_at FROM users WHERE user_id=$1`, userID)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Topics, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, opFailed("get user", err)
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
