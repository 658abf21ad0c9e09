package booking

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campushub/internal/apperr"
	"campushub/internal/auth"
	"campushub/internal/metrics"
	"campushub/internal/queue"
)

type Handler struct {
	svc *Service
	q   queue.Queue
}

func NewHandler(svc *Service, q queue.Queue) *Handler {
	return &Handler{svc: svc, q: q}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"message": apperr.Message(err)})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apperr.Validation("invalid "+name))
		return 0, false
	}
	return id, true
}

func (h *Handler) publish(c *gin.Context, eventType string, payload any) {
	evt, err := queue.NewEvent(eventType, payload)
	if err != nil {
		return
	}
	if err := h.q.Publish(c.Request.Context(), evt); err != nil {
		metrics.QueueDropsTotal.Inc()
		log.Printf("queue publish failed: %v", err)
	}
}

// BookLab files a lab booking for the caller.
func (h *Handler) BookLab(c *gin.Context) {
	var in BookLabInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("invalid booking payload"))
		return
	}
	if in.UserID == 0 {
		in.UserID = auth.CallerID(c)
	}
	b, err := h.svc.BookLab(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "booking.created", b)
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) MyBookings(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	out, err := h.svc.BookingsByUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) PendingBookings(c *gin.Context) {
	out, err := h.svc.PendingBookings(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.ApproveBooking(c.Request.Context(), id, auth.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "booking.approved", b)
	c.JSON(http.StatusOK, b)
}

func (h *Handler) RejectBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.RejectBooking(c.Request.Context(), id, auth.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "booking.rejected", b)
	c.JSON(http.StatusOK, b)
}

// RequestEquipment files an equipment request for the caller.
func (h *Handler) RequestEquipment(c *gin.Context) {
	var in RequestEquipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("invalid request payload"))
		return
	}
	if in.UserID == 0 {
		in.UserID = auth.CallerID(c)
	}
	q, err := h.svc.RequestEquipment(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "equipment.requested", q)
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) MyRequests(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	out, err := h.svc.RequestsByUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) PendingRequests(c *gin.Context) {
	out, err := h.svc.PendingRequests(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ApproveRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	q, err := h.svc.ApproveRequest(c.Request.Context(), id, auth.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "equipment.approved", q)
	c.JSON(http.StatusOK, q)
}

func (h *Handler) RejectRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	q, err := h.svc.RejectRequest(c.Request.Context(), id, auth.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "equipment.rejected", q)
	c.JSON(http.StatusOK, q)
}

// ReturnEquipment puts borrowed units back into the pool.
func (h *Handler) ReturnEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Qty int `json:"qty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid return payload"))
		return
	}
	if err := h.svc.ReturnEquipment(c.Request.Context(), id, req.Qty); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "equipment returned"})
}
