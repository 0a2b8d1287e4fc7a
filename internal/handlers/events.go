package handlers

import (
	"net/http"

	"mytickets/internal/validation"

	"github.com/gin-gonic/gin"
)

// CreateEvent - POST /events
// Создать событие
func (h *Handlers) CreateEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.handleServiceError(c, err, "Failed to read request body")
		return
	}

	in, err := validation.Event(body)
	if err != nil {
		h.handleServiceError(c, err, "Invalid event payload")
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ListEvents - GET /events?query=
// Получить список событий
func (h *Handlers) ListEvents(c *gin.Context) {
	events, err := h.services.Events.List(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to list events")
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent - GET /events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Invalid event id")
		return
	}

	event, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdateEvent - PUT /events/:id
// Полное обновление: частичные изменения не поддерживаются
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Invalid event id")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.handleServiceError(c, err, "Failed to read request body")
		return
	}

	in, err := validation.Event(body)
	if err != nil {
		h.handleServiceError(c, err, "Invalid event payload")
		return
	}

	event, err := h.services.Events.Update(c.Request.Context(), id, in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent - DELETE /events/:id
// Удаляет событие вместе с билетами
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Invalid event id")
		return
	}

	if err := h.services.Events.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete event")
		return
	}

	c.Status(http.StatusNoContent)
}
