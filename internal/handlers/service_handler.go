package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/models"
)

// Read-only browse surface for the front end. Service/category CRUD happens
// elsewhere.
type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

func (h *ServiceHandler) List(c *gin.Context) {
	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.
		Preload("Category").
		Where("active = true")

	if category != "" {
		q = q.Joins("JOIN categories ON categories.id = services.category_id").
			Where("LOWER(categories.name) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(services.name) LIKE ? OR LOWER(services.description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("services.id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"total":    len(services),
	})
}
