package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// RawID keeps the textual form of an id sent in a JSON body, whether it came
// as a number or as a string. Numeric checks happen in the validation layer.
type RawID string

// UnmarshalJSON accepts numbers, strings and null. Integral numbers written
// with a fraction or exponent (1.0, 1e3) are kept in plain integer form.
// Anything else is kept verbatim so the validation layer can reject it.
func (r *RawID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*r = RawID(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*r = RawID(integralForm(num))
		return nil
	}

	*r = RawID(data)
	return nil
}

func integralForm(num json.Number) string {
	if _, err := num.Int64(); err == nil {
		return num.String()
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) {
		return num.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// EventRequest - тело запроса создания и обновления события
type EventRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Date string `json:"date" validate:"required"`
}

// TicketRequest - тело запроса создания билета
type TicketRequest struct {
	Owner   string `json:"owner" validate:"required,max=255"`
	Code    string `json:"code" validate:"required,max=255"`
	EventID RawID  `json:"eventId" validate:"required"`
}

// UserRequest - тело запроса регистрации пользователя
type UserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

// EventInput is a validated event payload
type EventInput struct {
	Name string
	Date time.Time
}

// TicketInput is a validated ticket payload
type TicketInput struct {
	Owner   string
	Code    string
	EventID int64
}

// UserInput is a validated user payload
type UserInput struct {
	Email    string
	Password string
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
