// Package smoke drives a running instance through every route and checks the
// status code contract.
package smoke

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mytickets/internal/models"

	"github.com/google/uuid"
)

// Result of one check
type Result struct {
	Name   string
	Passed bool
	Detail string
}

type Report struct {
	Results []Result
}

func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r Report) OK() bool {
	return len(r.Failed()) == 0
}

// Checker runs the checks. Names are suffixed with a run id so that a
// checker can run repeatedly against the same database.
type Checker struct {
	client *Client
	runID  string
	now    func() time.Time
	report Report
}

func NewChecker(client *Client) *Checker {
	return &Checker{
		client: client,
		runID:  uuid.New().String()[:8],
		now:    time.Now,
	}
}

func (c *Checker) name(base string) string {
	return base + " " + c.runID
}

func (c *Checker) record(name string, err error) bool {
	res := Result{Name: name, Passed: err == nil}
	if err != nil {
		res.Detail = err.Error()
		slog.Error("Check failed", "check", name, "error", err)
	} else {
		slog.Info("Check passed", "check", name)
	}
	c.report.Results = append(c.report.Results, res)
	return err == nil
}

// expect sends a request and checks the status is one of want
func (c *Checker) expect(ctx context.Context, name, method, path string, body any, want ...int) (Response, bool) {
	resp, err := c.client.Do(ctx, method, path, body)
	if err == nil && !contains(want, resp.Status) {
		err = fmt.Errorf("%s %s: expected %v, got %d: %s", method, path, want, resp.Status, truncate(resp.Body))
	}
	return resp, c.record(name, err)
}

func (c *Checker) expectText(name string, resp Response, substr string) {
	var err error
	if !strings.Contains(strings.ToLower(resp.Text()), strings.ToLower(substr)) {
		err = fmt.Errorf("expected body to contain %q, got %s", substr, truncate(resp.Body))
	}
	c.record(name, err)
}

// Run executes every check and returns the report. It stops early only when
// a check that later checks depend on fails.
func (c *Checker) Run(ctx context.Context) Report {
	c.report = Report{}

	if resp, ok := c.expect(ctx, "health", http.MethodGet, "/health", nil, http.StatusOK); ok {
		c.record("health body", equalText(resp, "I'm okay!"))
	}

	event, ok := c.checkEvents(ctx)
	if !ok {
		return c.report
	}

	c.checkTickets(ctx, event)
	c.checkUsers(ctx)
	c.checkDelete(ctx, event)

	return c.report
}

func (c *Checker) createEvent(ctx context.Context, check, name string, date time.Time) (models.Event, bool) {
	var event models.Event
	resp, ok := c.expect(ctx, check, http.MethodPost, "/events",
		map[string]string{"name": name, "date": date.UTC().Format(time.RFC3339)},
		http.StatusCreated)
	if !ok {
		return event, false
	}
	if err := resp.Decode(&event); err != nil || event.ID == 0 {
		c.record(check+" body", fmt.Errorf("expected event with id, got %s", truncate(resp.Body)))
		return event, false
	}
	return event, true
}

func (c *Checker) checkEvents(ctx context.Context) (models.Event, bool) {
	future := c.now().Add(7 * 24 * time.Hour)

	event, ok := c.createEvent(ctx, "create event", c.name("Concert A"), future)
	if !ok {
		return event, false
	}
	path := fmt.Sprintf("/events/%d", event.ID)

	c.expect(ctx, "duplicate event name", http.MethodPost, "/events",
		map[string]string{"name": event.Name, "date": c.now().Add(-time.Hour).UTC().Format(time.RFC3339)},
		http.StatusConflict)
	c.expect(ctx, "empty event payload", http.MethodPost, "/events", map[string]string{}, http.StatusUnprocessableEntity)
	c.expect(ctx, "get event", http.MethodGet, path, nil, http.StatusOK)
	c.expect(ctx, "get event malformed id", http.MethodGet, "/events/abc", nil, http.StatusBadRequest)
	c.expect(ctx, "get unknown event", http.MethodGet, "/events/999999999", nil, http.StatusNotFound)

	if resp, ok := c.expect(ctx, "list events", http.MethodGet, "/events", nil, http.StatusOK); ok {
		var events []models.Event
		err := resp.Decode(&events)
		if err == nil && !containsEvent(events, event.ID) {
			err = fmt.Errorf("event %d missing from list", event.ID)
		}
		c.record("list events contains created", err)
	}

	c.expect(ctx, "update event same name", http.MethodPut, path,
		map[string]string{"name": event.Name, "date": future.Add(time.Hour).UTC().Format(time.RFC3339)},
		http.StatusOK)
	c.expect(ctx, "update event empty name", http.MethodPut, path,
		map[string]string{"name": "", "date": future.UTC().Format(time.RFC3339)},
		http.StatusUnprocessableEntity)
	c.expect(ctx, "update unknown event", http.MethodPut, "/events/999999999",
		map[string]string{"name": c.name("Nobody"), "date": future.UTC().Format(time.RFC3339)},
		http.StatusNotFound)

	return event, true
}

func (c *Checker) checkTickets(ctx context.Context, event models.Event) {
	code := "AB12CD34"
	ticketBody := func(owner string, eventID int64) map[string]any {
		return map[string]any{"owner": owner, "code": code, "eventId": eventID}
	}

	resp, ok := c.expect(ctx, "create ticket", http.MethodPost, "/tickets", ticketBody("Alice", event.ID), http.StatusCreated)
	var ticket models.Ticket
	if ok {
		err := resp.Decode(&ticket)
		if err == nil && (ticket.ID == 0 || ticket.Used) {
			err = fmt.Errorf("expected unused ticket with id, got %s", truncate(resp.Body))
		}
		ok = c.record("create ticket body", err)
	}

	if resp, done := c.expect(ctx, "duplicate ticket code", http.MethodPost, "/tickets", ticketBody("Bob", event.ID), http.StatusConflict); done {
		c.expectText("duplicate ticket code message", resp, "already registered")
	}
	c.expect(ctx, "ticket for unknown event", http.MethodPost, "/tickets", ticketBody("Bob", 999999999), http.StatusNotFound)
	c.expect(ctx, "ticket non numeric event", http.MethodPost, "/tickets",
		map[string]any{"owner": "Bob", "code": code, "eventId": "abc"}, http.StatusUnprocessableEntity)

	if other, created := c.createEvent(ctx, "create second event", c.name("Concert B"), c.now().Add(48*time.Hour)); created {
		c.expect(ctx, "same code other event", http.MethodPost, "/tickets", ticketBody("Bob", other.ID), http.StatusCreated)
		c.expect(ctx, "cleanup second event", http.MethodDelete, fmt.Sprintf("/events/%d", other.ID), nil, http.StatusOK, http.StatusNoContent)
	}

	c.expect(ctx, "list tickets", http.MethodGet, fmt.Sprintf("/tickets/%d", event.ID), nil, http.StatusOK)
	if resp, done := c.expect(ctx, "list tickets unknown event", http.MethodGet, "/tickets/999999999", nil, http.StatusOK); done {
		c.record("list tickets unknown event empty", equalText(resp, "[]"))
	}
	c.expect(ctx, "list tickets malformed id", http.MethodGet, "/tickets/abc", nil, http.StatusBadRequest)

	if ok {
		usePath := fmt.Sprintf("/tickets/use/%d", ticket.ID)
		c.expect(ctx, "use ticket", http.MethodPut, usePath, nil, http.StatusOK, http.StatusNoContent)
		c.expect(ctx, "use ticket again", http.MethodPut, usePath, nil, http.StatusConflict, http.StatusForbidden)
	}
	c.expect(ctx, "use unknown ticket", http.MethodPut, "/tickets/use/999999999", nil, http.StatusNotFound)
	c.expect(ctx, "use malformed ticket id", http.MethodPut, "/tickets/use/abc", nil, http.StatusBadRequest)

	if past, created := c.createEvent(ctx, "create past event", c.name("Old Show"), c.now().Add(-24*time.Hour)); created {
		if resp, done := c.expect(ctx, "ticket for past event", http.MethodPost, "/tickets", ticketBody("Carol", past.ID), http.StatusForbidden); done {
			c.expectText("ticket for past event message", resp, "already happened")
		}
		c.expect(ctx, "cleanup past event", http.MethodDelete, fmt.Sprintf("/events/%d", past.ID), nil, http.StatusOK, http.StatusNoContent)
	}
}

func (c *Checker) checkUsers(ctx context.Context) {
	email := fmt.Sprintf("smoke-%s@example.com", c.runID)
	body := map[string]string{"email": email, "password": "s3cret!"}

	if resp, ok := c.expect(ctx, "create user", http.MethodPost, "/users", body, http.StatusCreated); ok {
		var user map[string]any
		err := resp.Decode(&user)
		if err == nil {
			if user["email"] != email {
				err = fmt.Errorf("expected email %q, got %v", email, user["email"])
			} else if _, leaked := user["password"]; leaked {
				err = fmt.Errorf("password returned in response")
			}
		}
		c.record("create user body", err)
	}

	c.expect(ctx, "duplicate email", http.MethodPost, "/users", body, http.StatusConflict)
	c.expect(ctx, "invalid email", http.MethodPost, "/users", map[string]string{"email": "invalid"}, http.StatusUnprocessableEntity)
}

func (c *Checker) checkDelete(ctx context.Context, event models.Event) {
	path := fmt.Sprintf("/events/%d", event.ID)
	c.expect(ctx, "delete event", http.MethodDelete, path, nil, http.StatusOK, http.StatusNoContent)
	c.expect(ctx, "delete event again", http.MethodDelete, path, nil, http.StatusNotFound)
	c.expect(ctx, "delete malformed id", http.MethodDelete, "/events/abc", nil, http.StatusBadRequest)
}

func equalText(resp Response, want string) error {
	if strings.TrimSpace(resp.Text()) != want {
		return fmt.Errorf("expected body %q, got %q", want, truncate(resp.Body))
	}
	return nil
}

func containsEvent(events []models.Event, id int64) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}

func contains(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
