package api

import (
	"net/http"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/Domenick1991/confbooking/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	service  users.UserUseCase
	validate *validator.Validate
}

type addUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Topics string `json:"topics"`
}

type userResponse struct {
	UserID string `json:"user_id"`
	Topics string `json:"topics"`
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service, validate: validator.New()}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
}

func (h *UserHandler) create(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Register(c.Request.Context(), domain.User{ID: req.UserID, Topics: req.Topics})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userResponse{UserID: created.ID, Topics: created.Topics})
}
