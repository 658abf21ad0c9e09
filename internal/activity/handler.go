package activity

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"campushub/internal/apperr"
)

type Handler struct {
	repo    *Repository
	timeout time.Duration
}

func NewHandler(repo *Repository, timeout time.Duration) *Handler {
	return &Handler{repo: repo, timeout: timeout}
}

// Recent lists the newest activity entries. ?limit= caps the page size.
func (h *Handler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	out, err := h.repo.Recent(ctx, limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": apperr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, out)
}
