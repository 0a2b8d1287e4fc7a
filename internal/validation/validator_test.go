package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "mytickets/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Reason
	}
	return fields
}

func TestEvent_Valid(t *testing.T) {
	in, err := Event([]byte(`{"name":"Concert A","date":"2030-05-01T20:00:00.000Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "Concert A", in.Name)
	assert.Equal(t, time.Date(2030, 5, 1, 20, 0, 0, 0, time.UTC), in.Date)
}

func TestEvent_AcceptsPlainDate(t *testing.T) {
	in, err := Event([]byte(`{"name":"Fair","date":"2030-05-01"}`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), in.Date)
}

func TestEvent_EmptyObjectReportsEveryField(t *testing.T) {
	_, err := Event([]byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayload)

	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["date"])
}

func TestEvent_EmptyBody(t *testing.T) {
	_, err := Event(nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayload)
}

func TestEvent_BlankNameRejected(t *testing.T) {
	_, err := Event([]byte(`{"name":"   ","date":"2030-05-01"}`))
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "name")
	assert.NotContains(t, fields, "date")
}

func TestEvent_NameOnlyRejected(t *testing.T) {
	_, err := Event([]byte(`{"name":""}`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayload)
}

func TestEvent_UnparseableDate(t *testing.T) {
	_, err := Event([]byte(`{"name":"Show","date":"next friday"}`))
	fields := fieldsOf(t, err)
	assert.Equal(t, "must be an ISO 8601 timestamp", fields["date"])
}

func TestEvent_WrongType(t *testing.T) {
	_, err := Event([]byte(`{"name":42,"date":"2030-05-01"}`))
	fields := fieldsOf(t, err)
	assert.Equal(t, "must be a string, got number", fields["name"])
}

func TestEvent_MalformedJSON(t *testing.T) {
	_, err := Event([]byte(`{"name":`))
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "body")
}

func TestTicket_Valid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"numeric event id", `{"owner":"Alice","code":"AB12CD34","eventId":7}`},
		{"string event id", `{"owner":"Alice","code":"AB12CD34","eventId":"7"}`},
		{"escaped string event id", `{"owner":"Alice","code":"AB12CD34","eventId":"\u0037"}`},
		{"integral float event id", `{"owner":"Alice","code":"AB12CD34","eventId":7.0}`},
		{"exponent event id", `{"owner":"Alice","code":"AB12CD34","eventId":0.7e1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Ticket([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, "Alice", in.Owner)
			assert.Equal(t, "AB12CD34", in.Code)
			assert.Equal(t, int64(7), in.EventID)
		})
	}
}

func TestTicket_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty object", `{}`, "owner"},
		{"missing code", `{"owner":"Alice","eventId":1}`, "code"},
		{"null event id", `{"owner":"Alice","code":"X","eventId":null}`, "eventId"},
		{"non numeric event id", `{"owner":"Alice","code":"X","eventId":"abc"}`, "eventId"},
		{"fractional event id", `{"owner":"Alice","code":"X","eventId":1.5}`, "eventId"},
		{"boolean event id", `{"owner":"Alice","code":"X","eventId":true}`, "eventId"},
		{"code too long", `{"owner":"Alice","code":"` + strings.Repeat("c", 256) + `","eventId":1}`, "code"},
		{"owner too long", `{"owner":"` + strings.Repeat("o", 256) + `","code":"X","eventId":1}`, "owner"},
		{"object event id", `{"owner":"Alice","code":"X","eventId":{"id":1}}`, "eventId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ticket([]byte(tt.body))
			require.ErrorIs(t, err, apperrors.ErrInvalidPayload)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

// Numeric ids that cannot exist resolve to 0 so the event lookup reports
// them as absent instead of malformed.
func TestTicket_UnreachableEventID(t *testing.T) {
	for _, raw := range []string{`0`, `-3`, `"-3"`, `99999999999999999999`} {
		in, err := Ticket([]byte(`{"owner":"Alice","code":"X","eventId":` + raw + `}`))
		require.NoError(t, err, raw)
		assert.Equal(t, int64(0), in.EventID, raw)
	}
}

func TestEvent_NameLength(t *testing.T) {
	_, err := Event([]byte(`{"name":"` + strings.Repeat("x", 255) + `","date":"2030-05-01"}`))
	require.NoError(t, err)

	_, err = Event([]byte(`{"name":"` + strings.Repeat("x", 256) + `","date":"2030-05-01"}`))
	assert.Equal(t, "must be at most 255 characters", fieldsOf(t, err)["name"])
}

func TestUser(t *testing.T) {
	in, err := User([]byte(`{"email":"Jane.Doe@example.com","password":"s3cret!"}`))
	require.NoError(t, err)
	assert.Equal(t, "Jane.Doe@example.com", in.Email)
	assert.Equal(t, "s3cret!", in.Password)

	_, err = User([]byte(`{"email":"invalid"}`))
	fields := fieldsOf(t, err)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "is required", fields["password"])

	_, err = User([]byte(`{"email":"a@b.co","password":"123"}`))
	assert.Equal(t, "must be at least 6 characters", fieldsOf(t, err)["password"])
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"abc", "", "1.5", "1e3", "12abc", "-"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, apperrors.ErrMalformedID, raw)
	}

	for _, raw := range []string{"0", "-1", "9999999999999999999999"} {
		id, err := ParseID(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, int64(0), id, raw)
	}
}
