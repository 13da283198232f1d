package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/Domenick1991/confbooking/internal/service/conference"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ConferenceHandler struct {
	service  conference.ConferenceUseCase
	validate *validator.Validate
}

type addConferenceRequest struct {
	Name           string    `json:"name" validate:"required"`
	Location       string    `json:"location" validate:"required"`
	Topics         string    `json:"topics"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	AvailableSlots int       `json:"available_slots" validate:"gte=0"`
}

type conferenceResponse struct {
	Name           string `json:"name"`
	Location       string `json:"location"`
	Topics         string `json:"topics"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	AvailableSlots int    `json:"available_slots"`
}

func NewConferenceHandler(service conference.ConferenceUseCase) *ConferenceHandler {
	return &ConferenceHandler{service: service, validate: validator.New()}
}

func (h *ConferenceHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
}

func (h *ConferenceHandler) create(c *gin.Context) {
	var req addConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Register(c.Request.Context(), domain.Conference{
		Name:           req.Name,
		Location:       req.Location,
		Topics:         req.Topics,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		AvailableSlots: req.AvailableSlots,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toConferenceResponse(*created))
}

func (h *ConferenceHandler) list(c *gin.Context) {
	conferences, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]conferenceResponse, 0, len(conferences))
	for _, conf := range conferences {
		out = append(out, toConferenceResponse(conf))
	}
	c.JSON(http.StatusOK, out)
}

func toConferenceResponse(conf domain.Conference) conferenceResponse {
	return conferenceResponse{
		Name:           conf.Name,
		Location:       conf.Location,
		Topics:         conf.Topics,
		StartTime:      conf.StartTime.Format(time.RFC3339),
		EndTime:        conf.EndTime.Format(time.RFC3339),
		AvailableSlots: conf.AvailableSlots,
	}
}
