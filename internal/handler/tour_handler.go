package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"natours/internal/errors"
	"natours/internal/model"
	"natours/internal/service"
)

// TourHandler handles tour endpoints.
type TourHandler struct {
	svc service.TourService
}

// NewTourHandler creates a new tour handler.
func NewTourHandler(svc service.TourService) *TourHandler {
	return &TourHandler{svc: svc}
}

// CreateTourRequest represents a new tour.
type CreateTourRequest struct {
	Name          string           `json:"name" validate:"required"`
	Duration      int              `json:"duration" validate:"required"`
	MaxGroupSize  int              `json:"maxGroupSize" validate:"required"`
	Difficulty    model.Difficulty `json:"difficulty" validate:"required"`
	Price         decimal.Decimal  `json:"price" swaggertype:"number"`
	PriceDiscount *decimal.Decimal `json:"priceDiscount,omitempty" swaggertype:"number"`
	Summary       string           `json:"summary" validate:"required"`
	Description   string           `json:"description"`
	ImageCover    string           `json:"imageCover" validate:"required"`
	Images        []string         `json:"images"`
}

// UpdateTourRequest holds the fields of a partial update.
type UpdateTourRequest struct {
	Name          *string           `json:"name"`
	Duration      *int              `json:"duration"`
	MaxGroupSize  *int              `json:"maxGroupSize"`
	Difficulty    *model.Difficulty `json:"difficulty"`
	Price         *decimal.Decimal  `json:"price" swaggertype:"number"`
	PriceDiscount *decimal.Decimal  `json:"priceDiscount" swaggertype:"number"`
	Summary       *string           `json:"summary"`
	Description   *string           `json:"description"`
	ImageCover    *string           `json:"imageCover"`
	Images        []string          `json:"images"`
}

// ListTours godoc
// @Summary List tours
// @Tags tours
// @Produce json
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} ToursResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /tours [get]
func (h *TourHandler) ListTours(c echo.Context) error {
	var page, limit int
	if err := echo.QueryParamsBinder(c).Int("page", &page).Int("limit", &limit).BindError(); err != nil {
		return errors.ToEchoError(validationError(err))
	}

	tours, err := h.svc.ListTours(c.Request().Context(), page, limit)
	if err != nil {
		return errors.ToEchoError(err)
	}
	resp := ToursResponse{Status: statusSuccess, Results: len(tours)}
	resp.Data.Tours = tours
	return c.JSON(http.StatusOK, resp)
}

// GetTour godoc
// @Summary Get tour by id
// @Tags tours
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} TourResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tours/{id} [get]
func (h *TourHandler) GetTour(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	tour, err := h.svc.GetTour(c.Request().Context(), id)
	if err != nil {
		return errors.ToEchoError(err)
	}
	return c.JSON(http.StatusOK, tourResponse(tour))
}

// CreateTour godoc
// @Summary Create a tour
// @Tags tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTourRequest true "Tour"
// @Success 201 {object} TourResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tours [post]
func (h *TourHandler) CreateTour(c echo.Context) error {
	var req CreateTourRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tour, err := h.svc.CreateTour(c.Request().Context(), &model.Tour{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
	})
	if err != nil {
		return errors.ToEchoError(err)
	}
	return c.JSON(http.StatusCreated, tourResponse(tour))
}

// UpdateTour godoc
// @Summary Update a tour
// @Tags tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Param request body UpdateTourRequest true "Fields to change"
// @Success 200 {object} TourResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tours/{id} [patch]
func (h *TourHandler) UpdateTour(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req UpdateTourRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tour, err := h.svc.UpdateTour(c.Request().Context(), id, service.TourPatch{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
	})
	if err != nil {
		return errors.ToEchoError(err)
	}
	return c.JSON(http.StatusOK, tourResponse(tour))
}

// DeleteTour godoc
// @Summary Delete a tour
// @Tags tours
// @Security BearerAuth
// @Param id path string true "Tour ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tours/{id} [delete]
func (h *TourHandler) DeleteTour(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTour(c.Request().Context(), id); err != nil {
		return errors.ToEchoError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func tourResponse(tour *model.Tour) TourResponse {
	resp := TourResponse{Status: statusSuccess}
	resp.Data.Tour = tour
	return resp
}
