package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/models"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientWithBan struct {
	models.Client
	Banned bool `json:"banned"`
}

// ======================================================
// LIST CLIENTS (ADMIN)
// ======================================================

// List returns clients with their derived banned state: a client is banned
// iff at least one review flag is in state banned.
func (h *ClientHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Model(&models.Client{})

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ? OR email LIKE ?",
			like, like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed_to_list_clients",
		})
		return
	}

	var bannedIDs []uint
	if err := h.db.Model(&models.ClientReviewFlag{}).
		Where("status = ?", models.FlagStatusBanned).
		Distinct().
		Pluck("client_id", &bannedIDs).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed_to_list_clients",
		})
		return
	}

	banned := make(map[uint]bool, len(bannedIDs))
	for _, id := range bannedIDs {
		banned[id] = true
	}

	out := make([]clientWithBan, 0, len(clients))
	for _, cl := range clients {
		out = append(out, clientWithBan{Client: cl, Banned: banned[cl.ID]})
	}

	c.JSON(http.StatusOK, out)
}
