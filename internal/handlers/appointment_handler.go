package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/bellastudio/booking-api/internal/domain/booking"
	"github.com/bellastudio/booking-api/internal/dto"
	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/httpresp"
	"github.com/bellastudio/booking-api/internal/retry"
	ucBooking "github.com/bellastudio/booking-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	schedule *ucBooking.ScheduleAppointment
	repo     domain.Repository
}

func NewAppointmentHandler(
	schedule *ucBooking.ScheduleAppointment,
	repo domain.Repository,
) *AppointmentHandler {
	return &AppointmentHandler{
		schedule: schedule,
		repo:     repo,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookingClientRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone_number" binding:"required"`
}

type CreateAppointmentRequest struct {
	ServiceID uint                 `json:"service_id" binding:"required"`
	Time      string               `json:"time" binding:"required"` // RFC3339
	Client    BookingClientRequest `json:"client" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

// Create books a slot. Replaying the same logical request returns 201 with
// the identical appointment; a different client on the same slot gets 409.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed booking request.")
		return
	}

	at, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		httperr.BadRequest(c, "invalid_time", "Time must be an ISO-8601 timestamp.")
		return
	}

	ap, err := h.schedule.Execute(c.Request.Context(), ucBooking.ScheduleAppointmentInput{
		ServiceID: req.ServiceID,
		Time:      at,
		FirstName: req.Client.FirstName,
		LastName:  req.Client.LastName,
		Email:     req.Client.Email,
		Phone:     req.Client.Phone,
	})
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAppointmentDTO(ap))
}

// ======================================================
// ADMIN READS
// ======================================================

// ListForDay returns the scheduled appointments of one service for a single
// calendar day (UTC).
func (h *AppointmentHandler) ListForDay(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 32)
	if err != nil || serviceID == 0 {
		httperr.BadRequest(c, "invalid_service_id", "A numeric service_id is required.")
		return
	}

	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	start := day.UTC()
	aps, err := h.repo.ListAppointmentsForDay(
		c.Request.Context(), uint(serviceID), start, start.Add(24*time.Hour))
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	out := make([]dto.AppointmentDTO, 0, len(aps))
	for i := range aps {
		out = append(out, dto.NewAppointmentDTO(&aps[i]))
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "A numeric appointment id is required.")
		return
	}

	ap, err := h.repo.GetAppointmentByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_appointment", "Could not load the appointment.")
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointmentDTO(ap))
}

// ======================================================
// ERROR MAPPING
// ======================================================

func writeScheduleError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, "slot_conflict"):
		httperr.Conflict(c, "slot_conflict", "That time slot was just taken. Please pick another.")

	case httperr.IsBusiness(err, "service_not_found"):
		httperr.NotFound(c, "service_not_found", "Service not found or not bookable.")

	case httperr.IsBusiness(err, "invalid_client_name"):
		httperr.BadRequest(c, "invalid_client_name", "First and last name are required.")

	case httperr.IsBusiness(err, "invalid_email"):
		httperr.BadRequest(c, "invalid_email", "A valid email address is required.")

	case httperr.IsBusiness(err, "slot_in_past"):
		httperr.BadRequest(c, "slot_in_past", "The requested time slot is in the past.")

	case httperr.IsBusiness(err, "invalid_phone"):
		httperr.BadRequest(c, "invalid_phone", "A valid phone number is required.")

	case httperr.IsBusiness(err, "invalid_request"):
		httperr.BadRequest(c, "invalid_request", "Booking request could not be identified.")

	case retry.IsUnavailable(err):
		httperr.Unavailable(c, "persistence_unavailable", "Storage is temporarily unavailable. Please try again.")

	default:
		httperr.Internal(c, "failed_to_create_appointment", "Could not create the appointment.")
	}
}
