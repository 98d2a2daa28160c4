package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"natours/internal/model"
)

// TourRepository defines tour persistence operations.
type TourRepository interface {
	Create(ctx context.Context, tour *model.Tour) error
	CreateBatch(ctx context.Context, tours []model.Tour) error
	Update(ctx context.Context, tour *model.Tour) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tour, error)
	List(ctx context.Context, limit, offset int) ([]model.Tour, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type tourRepository struct {
	db *gorm.DB
}

// NewTourRepository creates a new tour repository.
func NewTourRepository(db *gorm.DB) TourRepository {
	return &tourRepository{db: db}
}

// Create creates a new tour.
func (r *tourRepository) Create(ctx context.Context, tour *model.Tour) error {
	return r.db.WithContext(ctx).Create(tour).Error
}

// CreateBatch inserts tours in one transaction.
func (r *tourRepository) CreateBatch(ctx context.Context, tours []model.Tour) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(tours, 100).Error
	})
}

// Update writes every field of an existing tour.
func (r *tourRepository) Update(ctx context.Context, tour *model.Tour) error {
	return r.db.WithContext(ctx).Save(tour).Error
}

// FindByID finds a tour by ID.
func (r *tourRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var tour model.Tour
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tour).Error; err != nil {
		return nil, err
	}
	return &tour, nil
}

// List returns a page of tours, newest first.
func (r *tourRepository) List(ctx context.Context, limit, offset int) ([]model.Tour, error) {
	var tours []model.Tour
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tours).Error; err != nil {
		return nil, err
	}
	return tours, nil
}

// Delete removes a tour.
func (r *tourRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tour{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll removes every tour and reports how many were deleted.
func (r *tourRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Tour{})
	return res.RowsAffected, res.Error
}
