package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"natours/internal/cache"
	apperrors "natours/internal/errors"
	"natours/internal/model"
	"natours/internal/repository"
)

const (
	tourCacheTTL    = 5 * time.Minute
	defaultPageSize = 100
)

// TourPatch holds the fields of a partial tour update. Nil fields are left unchanged.
type TourPatch struct {
	Name          *string
	Duration      *int
	MaxGroupSize  *int
	Difficulty    *model.Difficulty
	Price         *decimal.Decimal
	PriceDiscount *decimal.Decimal
	Summary       *string
	Description   *string
	ImageCover    *string
	Images        []string
}

// TourService handles tour operations.
type TourService interface {
	ListTours(ctx context.Context, page, limit int) ([]model.Tour, error)
	GetTour(ctx context.Context, id uuid.UUID) (*model.Tour, error)
	CreateTour(ctx context.Context, tour *model.Tour) (*model.Tour, error)
	UpdateTour(ctx context.Context, id uuid.UUID, patch TourPatch) (*model.Tour, error)
	DeleteTour(ctx context.Context, id uuid.UUID) error
	ImportTours(ctx context.Context, tours []model.Tour) (int, error)
	DeleteAllTours(ctx context.Context) (int64, error)
}

type tourService struct {
	repo  repository.TourRepository
	cache *cache.Client
}

// NewTourService creates a new tour service. A nil cache disables caching.
func NewTourService(repo repository.TourRepository, cache *cache.Client) TourService {
	return &tourService{
		repo:  repo,
		cache: cache,
	}
}

func (s *tourService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("tour:%s", id.String())
}

func mapTourErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrTourNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrTourNameTaken
	}
	return err
}

// ListTours returns one page of tours. Pages start at 1.
func (s *tourService) ListTours(ctx context.Context, page, limit int) ([]model.Tour, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	tours, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	return tours, nil
}

// GetTour retrieves a tour by ID with caching.
func (s *tourService) GetTour(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var cached model.Tour
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	tour, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapTourErr(err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), tour, tourCacheTTL)
	return tour, nil
}

// CreateTour validates and stores a new tour.
func (s *tourService) CreateTour(ctx context.Context, tour *model.Tour) (*model.Tour, error) {
	if tour.ID == uuid.Nil {
		tour.ID = uuid.New()
	}
	if err := tour.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, tour); err != nil {
		return nil, mapTourErr(err)
	}
	return tour, nil
}

// UpdateTour applies a partial update and invalidates the cached copy.
func (s *tourService) UpdateTour(ctx context.Context, id uuid.UUID, patch TourPatch) (*model.Tour, error) {
	tour, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapTourErr(err)
	}

	patch.apply(tour)
	if err := tour.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tour); err != nil {
		return nil, mapTourErr(err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return tour, nil
}

// DeleteTour removes a tour and its cached copy.
func (s *tourService) DeleteTour(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapTourErr(err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// ImportTours validates and inserts tours in bulk.
func (s *tourService) ImportTours(ctx context.Context, tours []model.Tour) (int, error) {
	for i := range tours {
		if tours[i].ID == uuid.Nil {
			tours[i].ID = uuid.New()
		}
		if err := tours[i].Validate(); err != nil {
			return 0, fmt.Errorf("tour %d (%s): %w", i, tours[i].Name, err)
		}
	}
	if err := s.repo.CreateBatch(ctx, tours); err != nil {
		return 0, fmt.Errorf("import tours: %w", mapTourErr(err))
	}
	return len(tours), nil
}

// DeleteAllTours removes every tour. Cached entries expire on their own.
func (s *tourService) DeleteAllTours(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete tours: %w", err)
	}
	return n, nil
}

func (p TourPatch) apply(t *model.Tour) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.MaxGroupSize != nil {
		t.MaxGroupSize = *p.MaxGroupSize
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.PriceDiscount != nil {
		discount := *p.PriceDiscount
		t.PriceDiscount = &discount
	}
	if p.Summary != nil {
		t.Summary = *p.Summary
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ImageCover != nil {
		t.ImageCover = *p.ImageCover
	}
	if p.Images != nil {
		t.Images = p.Images
	}
}
