package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/Domenick1991/confbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BookingHandler struct {
	service  booking.BookingUseCase
	validate *validator.Validate
}

type bookSlotRequest struct {
	UserID         string `json:"user_id" validate:"required"`
	ConferenceName string `json:"conference_name" validate:"required"`
}

type bookingResponse struct {
	ID             string `json:"id"`
	ConferenceName string `json:"conference_name"`
	UserID         string `json:"user_id"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

type bookingStatusResponse struct {
	ID               string  `json:"id"`
	Status           string  `json:"status"`
	OfferOutstanding *bool   `json:"offer_outstanding,omitempty"`
	OfferExpiresAt   *string `json:"offer_expires_at,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service, validate: validator.New()}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.status)
	router.DELETE("/:id", h.cancel)
	router.PUT("/:id/confirm", h.confirm)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req bookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.BookSlot(c.Request.Context(), req.UserID, req.ConferenceName)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		ID:             created.ID,
		ConferenceName: created.ConferenceName,
		UserID:         created.UserID,
		Status:         string(created.Status),
		CreatedAt:      created.CreatedAt.Format(time.RFC3339),
	})
}

func (h *BookingHandler) status(c *gin.Context) {
	view, err := h.service.GetBookingStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatusResponse(view))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	view, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatusResponse(view))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	view, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatusResponse(view))
}

func toStatusResponse(view *domain.BookingStatusView) bookingStatusResponse {
	resp := bookingStatusResponse{
		ID:               view.ID,
		Status:           string(view.Status),
		OfferOutstanding: view.OfferOutstanding,
	}
	if view.OfferExpiresAt != nil {
		formatted := view.OfferExpiresAt.Format(time.RFC3339)
		resp.OfferExpiresAt = &formatted
	}
	return resp
}
