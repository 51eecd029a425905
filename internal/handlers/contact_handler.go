package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/bellastudio/booking-api/internal/domain/booking"
	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/models"
	"github.com/bellastudio/booking-api/internal/trust"
	"github.com/bellastudio/booking-api/internal/validators"
)

type ContactHandler struct {
	db    *gorm.DB
	trust *trust.Dispatcher
}

func NewContactHandler(db *gorm.DB, dispatcher *trust.Dispatcher) *ContactHandler {
	return &ContactHandler{
		db:    db,
		trust: dispatcher,
	}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Message string `json:"message" binding:"required"`
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed contact request.")
		return
	}

	email := domain.NormalizeEmail(req.Email)
	if !validators.IsEmailSyntaxValid(email) || !validators.IsEmailDomainValid(email) {
		httperr.BadRequest(c, "invalid_email", "A valid email address is required.")
		return
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   email,
		Phone:   req.Phone,
		Message: req.Message,
	}

	if err := h.db.Create(&msg).Error; err != nil {
		httperr.Internal(c, "failed_to_save_message", "Could not save the message.")
		return
	}

	h.trust.Dispatch(trust.Signal{
		Kind:       trust.SignalContactSubmitted,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	})

	c.JSON(http.StatusCreated, gin.H{"id": msg.ID})
}
