package sessions

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

// Create schedules a session for the calling lecturer.
func (h *Handler) Create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("invalid session payload"))
		return
	}
	if in.LecturerID == 0 {
		in.LecturerID = auth.CallerID(c)
	}
	s, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "session.scheduled", s)
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "session.cancelled", s)
	c.JSON(http.StatusOK, s)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if s == nil {
		fail(c, apperr.NotFound("session not found"))
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ByLecturer(c *gin.Context) {
	id, ok := pathID(c, "lecturerId")
	if !ok {
		return
	}
	out, err := h.svc.ByLecturer(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ByAssistant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.ByAssistant(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
