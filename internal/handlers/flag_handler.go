package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/httpresp"
	"github.com/bellastudio/booking-api/internal/middleware"
	"github.com/bellastudio/booking-api/internal/retry"
	ucTrust "github.com/bellastudio/booking-api/internal/usecase/trust"
)

// ======================================================
// HANDLER
// ======================================================

type FlagHandler struct {
	list    *ucTrust.ListFlags
	approve *ucTrust.ApproveFlag
	reject  *ucTrust.RejectFlag
	ban     *ucTrust.BanClient
	unban   *ucTrust.UnbanClient
	bulk    *ucTrust.BulkReview
}

func NewFlagHandler(
	list *ucTrust.ListFlags,
	approve *ucTrust.ApproveFlag,
	reject *ucTrust.RejectFlag,
	ban *ucTrust.BanClient,
	unban *ucTrust.UnbanClient,
	bulk *ucTrust.BulkReview,
) *FlagHandler {
	return &FlagHandler{
		list:    list,
		approve: approve,
		reject:  reject,
		ban:     ban,
		unban:   unban,
		bulk:    bulk,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ReviewRequest struct {
	Comments string `json:"comments"`
}

type BanRequest struct {
	Reason   string `json:"reason" binding:"required"`
	Comments string `json:"comments"`
}

type BulkReviewRequest struct {
	IDs      []uint `json:"ids" binding:"required"`
	Comments string `json:"comments"`
}

// ======================================================
// LIST
// ======================================================

func (h *FlagHandler) List(c *gin.Context) {
	status := c.Query("status")

	var clientID uint
	if s := c.Query("client_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_client_id", "Invalid client id.")
			return
		}
		clientID = uint(id)
	}

	flags, err := h.list.Execute(c.Request.Context(), status, clientID)
	if err != nil {
		if httperr.IsBusiness(err, "invalid_status_filter") {
			httperr.BadRequest(c, "invalid_status_filter", "Unknown flag status.")
			return
		}
		httperr.Internal(c, "failed_to_list_flags", "Could not list review flags.")
		return
	}

	httpresp.List(c, flags)
}

// ======================================================
// APPROVE / REJECT
// ======================================================

func (h *FlagHandler) Approve(c *gin.Context) {
	flagID, ok := paramID(c)
	if !ok {
		return
	}
	reviewerID := c.MustGet(middleware.ContextReviewerID).(uint)

	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

	flag, err := h.approve.Execute(c.Request.Context(), flagID, reviewerID, req.Comments)
	if err != nil {
		writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, flag)
}

func (h *FlagHandler) Reject(c *gin.Context) {
	flagID, ok := paramID(c)
	if !ok {
		return
	}
	reviewerID := c.MustGet(middleware.ContextReviewerID).(uint)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed review request.")
		return
	}

	flag, err := h.reject.Execute(c.Request.Context(), flagID, reviewerID, req.Comments)
	if err != nil {
		writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, flag)
}

// ======================================================
// BULK
// ======================================================

func (h *FlagHandler) BulkApprove(c *gin.Context) {
	h.bulkReview(c, ucTrust.BulkActionApprove)
}

func (h *FlagHandler) BulkReject(c *gin.Context) {
	h.bulkReview(c, ucTrust.BulkActionReject)
}

func (h *FlagHandler) bulkReview(c *gin.Context, action string) {
	reviewerID := c.MustGet(middleware.ContextReviewerID).(uint)

	var req BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		httperr.BadRequest(c, "invalid_request", "A non-empty ids list is required.")
		return
	}

	results, err := h.bulk.Execute(c.Request.Context(), action, req.IDs, reviewerID, req.Comments)
	if err != nil {
		httperr.Internal(c, "bulk_review_failed", "Could not run the bulk review.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ======================================================
// BAN / UNBAN
// ======================================================

func (h *FlagHandler) BanClient(c *gin.Context) {
	clientID, ok := paramID(c)
	if !ok {
		return
	}
	reviewerID := c.MustGet(middleware.ContextReviewerID).(uint)

	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "A ban reason is required.")
		return
	}

	flag, err := h.ban.Execute(c.Request.Context(), clientID, reviewerID, req.Reason, req.Comments)
	if err != nil {
		writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, flag)
}

func (h *FlagHandler) UnbanClient(c *gin.Context) {
	clientID, ok := paramID(c)
	if !ok {
		return
	}
	reviewerID := c.MustGet(middleware.ContextReviewerID).(uint)

	count, err := h.unban.Execute(c.Request.Context(), clientID, reviewerID)
	if err != nil {
		writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "client unbanned",
		"unbanned_flags": count,
	})
}

// ======================================================
// HELPERS
// ======================================================

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid id.")
		return 0, false
	}
	return uint(id), true
}

func writeReviewError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, "flag_not_found"):
		httperr.NotFound(c, "flag_not_found", "Review flag not found.")

	case httperr.IsBusiness(err, "client_not_found"):
		httperr.NotFound(c, "client_not_found", "Client not found.")

	case httperr.IsBusiness(err, "invalid_state"):
		httperr.BadRequest(c, "invalid_state", "The flag is no longer pending.")

	case httperr.IsBusiness(err, "missing_reason"):
		httperr.BadRequest(c, "missing_reason", "A rejection reason is required.")

	case httperr.IsBusiness(err, "no_appointments"):
		httperr.BadRequest(c, "no_appointments", "The client has no appointments to flag.")

	case retry.IsUnavailable(err):
		httperr.Unavailable(c, "persistence_unavailable", "Storage is temporarily unavailable. Please try again.")

	default:
		httperr.Internal(c, "review_failed", "Could not apply the review action.")
	}
}
