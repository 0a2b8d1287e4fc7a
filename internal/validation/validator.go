package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	apperrors "mytickets/internal/errors"
	"mytickets/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// dateLayouts are tried in order when parsing an event date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names instead of Go struct field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Event validates a raw event payload and returns the normalized input.
func Event(data []byte) (models.EventInput, error) {
	var req models.EventRequest
	verr := decode(data, &req)

	req.Name = strings.TrimSpace(req.Name)
	req.Date = strings.TrimSpace(req.Date)
	check(&req, verr)

	var date time.Time
	if req.Date != "" {
		parsed, err := ParseDate(req.Date)
		if err != nil {
			verr.Add("date", "must be an ISO 8601 timestamp")
		}
		date = parsed
	}

	if err := verr.OrNil(); err != nil {
		return models.EventInput{}, err
	}
	return models.EventInput{Name: req.Name, Date: date}, nil
}

// Ticket validates a raw ticket payload. A non-numeric eventId is a payload
// error; whether the event exists is decided later by the rules engine.
func Ticket(data []byte) (models.TicketInput, error) {
	var req models.TicketRequest
	verr := decode(data, &req)

	req.Owner = strings.TrimSpace(req.Owner)
	req.Code = strings.TrimSpace(req.Code)
	req.EventID = models.RawID(strings.TrimSpace(string(req.EventID)))
	check(&req, verr)

	var eventID int64
	if req.EventID != "" {
		id, err := ParseID(string(req.EventID))
		if err != nil {
			verr.Add("eventId", "must be a numeric id")
		}
		eventID = id
	}

	if err := verr.OrNil(); err != nil {
		return models.TicketInput{}, err
	}
	return models.TicketInput{Owner: req.Owner, Code: req.Code, EventID: eventID}, nil
}

// User validates a raw registration payload.
func User(data []byte) (models.UserInput, error) {
	var req models.UserRequest
	verr := decode(data, &req)

	req.Email = strings.TrimSpace(req.Email)
	check(&req, verr)

	if err := verr.OrNil(); err != nil {
		return models.UserInput{}, err
	}
	return models.UserInput{Email: req.Email, Password: req.Password}, nil
}

// ParseID parses an id taken from a path or a body. Anything that is not a
// base-10 integer is malformed. Integers that no row can carry (zero,
// negative, beyond int64) come back as 0, which every lookup reports as absent.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedID, raw)
	}
	if id < 0 {
		return 0, nil
	}
	return id, nil
}

// ParseDate parses RFC 3339 timestamps, zone-less timestamps (UTC) and plain dates.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", raw)
}

// decode fills dst from data. An empty body is treated as an empty object so
// that every missing field gets reported.
func decode(data []byte, dst any) *apperrors.ValidationError {
	verr := &apperrors.ValidationError{}
	if len(bytes.TrimSpace(data)) == 0 {
		return verr
	}

	err := json.Unmarshal(data, dst)
	if err == nil {
		return verr
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		verr.Add(typeErr.Field, "must be a "+jsonKind(typeErr.Type)+", got "+typeErr.Value)
	default:
		verr.Add("body", "must be a JSON object")
	}
	return verr
}

// check runs struct tag validation and appends failures to verr.
func check(req any, verr *apperrors.ValidationError) {
	err := validate.Struct(req)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("body", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), reason(fe))
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}
