package dto

import (
	"time"

	"github.com/bellastudio/booking-api/internal/models"
)

type ClientDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
}

type ServiceDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_min"`
}

type AppointmentDTO struct {
	ID      uint       `json:"id"`
	Time    time.Time  `json:"time"`
	Status  string     `json:"status"`
	Service ServiceDTO `json:"service"`
	Client  ClientDTO  `json:"client"`
}

func NewAppointmentDTO(ap *models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:     ap.ID,
		Time:   ap.ScheduledAt,
		Status: ap.Status,
		Service: ServiceDTO{
			ID:          ap.Service.ID,
			Name:        ap.Service.Name,
			Price:       ap.Service.Price,
			DurationMin: ap.Service.DurationMin,
		},
		Client: ClientDTO{
			ID:        ap.Client.ID,
			FirstName: ap.Client.FirstName,
			LastName:  ap.Client.LastName,
			Email:     ap.Client.Email,
			Phone:     ap.Client.Phone,
		},
	}
}
