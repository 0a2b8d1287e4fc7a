package handlers

import (
	"net/http"

	"mytickets/internal/validation"

	"github.com/gin-gonic/gin"
)

// CreateUser - POST /users
// Регистрация пользователя; пароль в ответ не попадает
func (h *Handlers) CreateUser(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.handleServiceError(c, err, "Failed to read request body")
		return
	}

	in, err := validation.User(body)
	if err != nil {
		h.handleServiceError(c, err, "Invalid user payload")
		return
	}

	user, err := h.services.Users.Create(c.Request.Context(), in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}
