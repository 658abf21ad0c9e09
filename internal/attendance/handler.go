package attendance

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

func (h *Handler) respond(c *gin.Context, in ScanInput) {
	rec, created, err := h.svc.Mark(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "attendance.recorded", rec)
	msg := "attendance recorded"
	if !created {
		msg = "attendance already recorded, scan refreshed"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "record": rec})
}

// Scan handles the lecturer scanner payload.
func (h *Handler) Scan(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id"`
		SessionID int64  `json:"session_id"`
		ScannedBy int64  `json:"scanned_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid scan payload"))
		return
	}
	if req.ScannedBy == 0 {
		req.ScannedBy = auth.CallerID(c)
	}
	h.respond(c, ScanInput{SessionID: req.SessionID, Student: req.StudentID, ScannedBy: req.ScannedBy})
}

// AssistantScan handles the assistant scanner payload, which uses camelCase
// keys and numeric student ids.
func (h *Handler) AssistantScan(c *gin.Context) {
	var req struct {
		SessionID int64  `json:"sessionId"`
		StudentID string `json:"studentId"`
		ScannedBy int64  `json:"scannedBy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid scan payload"))
		return
	}
	if req.ScannedBy == 0 {
		req.ScannedBy = auth.CallerID(c)
	}
	h.respond(c, ScanInput{SessionID: req.SessionID, Student: req.StudentID, ScannedBy: req.ScannedBy})
}

// BySession lists the attendance sheet for a session.
func (h *Handler) BySession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apperr.Validation("invalid id"))
		return
	}
	out, err := h.svc.BySession(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
