// internal/api/handlers/view_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/workshop-dashboard/internal/api/middleware"
	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/andresuchdata/workshop-dashboard/internal/service"
	"github.com/andresuchdata/workshop-dashboard/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ViewHandler struct {
	sessions *service.SessionManager
	records  view.RecordSource
	queue    view.QueueSource
}

func NewViewHandler(sessions *service.SessionManager, records view.RecordSource, queue view.QueueSource) *ViewHandler {
	return &ViewHandler{sessions: sessions, records: records, queue: queue}
}

type mountResponse struct {
	SessionID string    `json:"sessionId"`
	View      view.View `json:"view"`
}

// Mount opens a view session for the kind and returns its first view.
func (h *ViewHandler) Mount(c *gin.Context) {
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err, "invalid kind")
		return
	}

	id, v, err := h.sessions.Open(c.Request.Context(), kind, middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err, "failed to open view")
		return
	}

	c.JSON(http.StatusCreated, mountResponse{SessionID: id, View: v})
}

func (h *ViewHandler) GetView(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}

// ApplyFilter handles one filter control change.
func (h *ViewHandler) ApplyFilter(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var change domain.FilterChange
	if err := c.ShouldBindJSON(&change); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter change", "details": err.Error()})
		return
	}

	v, err := ctrl.Apply(c.Request.Context(), change)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter change", "details": err.Error(), "view": v})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *ViewHandler) RefreshQueue(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.RefreshQueue(c.Request.Context()))
}

func (h *ViewHandler) OpenComment(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sequence number", "details": err.Error()})
		return
	}

	v, err := ctrl.OpenComment(seq)
	if err != nil {
		respondError(c, err, "failed to open comment")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *ViewHandler) CloseComment(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.CloseComment())
}

func (h *ViewHandler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id"), middleware.SessionFrom(c)); err != nil {
		respondError(c, err, "failed to close view")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRecords is the stateless record fetch; query parameters are passed
// through as filter parameters.
func (h *ViewHandler) GetRecords(c *gin.Context) {
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err, "invalid kind")
		return
	}

	params := domain.ParamsFromValues(c.Request.URL.Query())
	records, err := h.records.FetchRecords(c.Request.Context(), middleware.SessionFrom(c), kind, params)
	if err != nil {
		respondError(c, err, "failed to fetch records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"kind":    kind,
		"params":  params,
		"records": records,
		"count":   len(records),
	})
}

func (h *ViewHandler) GetQueue(c *gin.Context) {
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err, "invalid kind")
		return
	}

	items, err := h.queue.FetchUploadQueue(c.Request.Context(), middleware.SessionFrom(c), kind)
	if err != nil {
		respondError(c, err, "failed to fetch upload queue")
		return
	}
	if items == nil {
		items = []domain.QueueItem{}
	}

	c.JSON(http.StatusOK, gin.H{"kind": kind, "items": items, "count": len(items)})
}

func (h *ViewHandler) controller(c *gin.Context) (*view.Controller, bool) {
	ctrl, err := h.sessions.Get(c.Param("id"), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err, "view session not found")
		return nil, false
	}
	return ctrl, true
}

func respondError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQueueItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownGroupBy),
		errors.Is(err, domain.ErrUnknownControl),
		errors.Is(err, domain.ErrInvalidDate):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
