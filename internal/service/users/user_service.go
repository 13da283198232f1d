package users

import (
	"context"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/Domenick1991/confbooking/internal/repository"
)

type UserUseCase interface {
	Register(ctx context.Context, user domain.User) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Register(ctx context.Context, user domain.User) (*domain.User, error) {
	return s.repo.Add(ctx, user)
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

var _ UserUseCase = (*UserService)(nil)
