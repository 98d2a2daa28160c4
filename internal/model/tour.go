package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"natours/internal/errors"
)

// Difficulty grades a tour.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// Tour is a bookable tour.
type Tour struct {
	ID              uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	Name            string           `json:"name" gorm:"uniqueIndex;size:40;not null" validate:"required,min=10,max=40"`
	Duration        int              `json:"duration" gorm:"not null" validate:"gt=0"`
	MaxGroupSize    int              `json:"maxGroupSize" gorm:"not null" validate:"gt=0"`
	Difficulty      Difficulty       `json:"difficulty" gorm:"size:20;not null" validate:"oneof=easy medium difficult"`
	RatingsAverage  float64          `json:"ratingsAverage" gorm:"default:4.5" validate:"gte=0,lte=5"`
	RatingsQuantity int              `json:"ratingsQuantity" gorm:"default:0"`
	Price           decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	PriceDiscount   *decimal.Decimal `json:"priceDiscount,omitempty" gorm:"type:decimal(10,2)"`
	Summary         string           `json:"summary" gorm:"size:512;not null" validate:"required"`
	Description     string           `json:"description,omitempty" gorm:"type:text"`
	ImageCover      string           `json:"imageCover" gorm:"size:255;not null" validate:"required"`
	Images          []string         `json:"images,omitempty" gorm:"serializer:json"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Tour) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Validate checks the tour against its field constraints.
func (t *Tour) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", errors.ErrInvalidInput)
	}
	if t.PriceDiscount != nil && t.PriceDiscount.GreaterThanOrEqual(t.Price) {
		return fmt.Errorf("%w: discount price must be below the regular price", errors.ErrInvalidInput)
	}
	return nil
}

// BeforeSave validates the record.
func (t *Tour) BeforeSave(tx *gorm.DB) error {
	return t.Validate()
}
