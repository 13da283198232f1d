package conference

import (
	"context"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/Domenick1991/confbooking/internal/repository"
)

type ConferenceUseCase interface {
	Register(ctx context.Context, conference domain.Conference) (*domain.Conference, error)
	List(ctx context.Context) ([]domain.Conference, error)
	GetByName(ctx context.Context, name string) (*domain.Conference, error)
}

type Cache interface {
	GetConferences(ctx context.Context) ([]domain.Conference, error)
	SetConferences(ctx context.Context, conferences []domain.Conference) error
	InvalidateConferences(ctx context.Context) error
}

type ConferenceService struct {
	repo  repository.ConferenceRepository
	cache Cache
}

func NewConferenceService(repo repository.ConferenceRepository, cache Cache) *ConferenceService {
	return &ConferenceService{repo: repo, cache: cache}
}

func (s *ConferenceService) Register(ctx context.Context, conference domain.Conference) (*domain.Conference, error) {
	created, err := s.repo.Add(ctx, conference)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateConferences(ctx)
	}
	return created, nil
}

func (s *ConferenceService) List(ctx context.Context) ([]domain.Conference, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetConferences(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	conferences, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetConferences(ctx, conferences)
	}
	return conferences, nil
}

func (s *ConferenceService) GetByName(ctx context.Context, name string) (*domain.Conference, error) {
	return s.repo.GetByName(ctx, name)
}

var _ ConferenceUseCase = (*ConferenceService)(nil)
