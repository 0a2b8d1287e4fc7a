package handlers

import (
	"net/http"

	"mytickets/internal/validation"

	"github.com/gin-gonic/gin"
)

// CreateTicket - POST /tickets
// Выпустить билет на будущее событие
func (h *Handlers) CreateTicket(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.handleServiceError(c, err, "Failed to read request body")
		return
	}

	in, err := validation.Ticket(body)
	if err != nil {
		h.handleServiceError(c, err, "Invalid ticket payload")
		return
	}

	ticket, err := h.services.Tickets.Create(c.Request.Context(), in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create ticket")
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// ListTickets - GET /tickets/:eventId
// Unknown events give an empty list, not 404
func (h *Handlers) ListTickets(c *gin.Context) {
	eventID, err := validation.ParseID(c.Param("eventId"))
	if err != nil {
		h.handleServiceError(c, err, "Invalid event id")
		return
	}

	tickets, err := h.services.Tickets.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list tickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// UseTicket - PUT /tickets/use/:id
// Погасить билет
func (h *Handlers) UseTicket(c *gin.Context) {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "Invalid ticket id")
		return
	}

	ticket, err := h.services.Tickets.Use(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to use ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}
