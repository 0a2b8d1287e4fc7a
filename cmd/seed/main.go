package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"mytickets/internal/config"
	"mytickets/internal/database"
	apperrors "mytickets/internal/errors"
	"mytickets/internal/logger"
	"mytickets/internal/models"
	"mytickets/internal/repository"
)

var (
	eventCount  = flag.Int("events", 10, "Number of events to generate")
	ticketCount = flag.Int("tickets", 50, "Number of tickets per event")
	prefix      = flag.String("prefix", "Seed", "Name prefix for generated events")
	clearSeeded = flag.Bool("clear", false, "Delete previously seeded events (and their tickets) first")
	dryRun      = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	venues = []string{"Arena", "Hall", "Club", "Stadium", "Theatre", "Park"}
	kinds  = []string{"Concert", "Festival", "Show", "Match", "Lecture", "Premiere"}
	owners = []string{"Alice", "Bob", "Carol", "Dana", "Erlan", "Aigerim", "Timur", "Zhanna"}
)

type Seeder struct {
	repos *repository.Repositories
	rnd   *rand.Rand
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting seed generator...", "events", *eventCount, "tickets_per_event", *ticketCount)

	ctx := context.Background()
	seeder := &Seeder{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}

	if *dryRun {
		for _, event := range generateEvents(seeder.rnd, *eventCount, *prefix, time.Now()) {
			slog.Info("[DRY RUN] Would create event", "name", event.Name, "date", event.Date, "tickets", *ticketCount)
		}
		return
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	seeder.repos = repository.NewRepositories(db)

	if *clearSeeded {
		removed, err := seeder.Clear(ctx, *prefix)
		if err != nil {
			logger.Fatal("Failed to clear seeded events", "error", err)
		}
		slog.Info("Cleared seeded events", "count", removed)
	}

	if err := seeder.Seed(ctx, *eventCount, *ticketCount, *prefix); err != nil {
		logger.Fatal("Failed to seed", "error", err)
	}

	slog.Info("Seed generation completed successfully!")
}

// Seed inserts events and their tickets. Events whose name is taken are skipped.
func (s *Seeder) Seed(ctx context.Context, events, tickets int, prefix string) error {
	for _, event := range generateEvents(s.rnd, events, prefix, time.Now()) {
		if err := s.repos.Events.Create(ctx, &event); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateName) {
				slog.Info("Event already exists, skipping (use -clear to override)", "name", event.Name)
				continue
			}
			return fmt.Errorf("failed to create event %q: %w", event.Name, err)
		}

		issued := 0
		for _, ticket := range generateTickets(s.rnd, event.ID, tickets) {
			err := s.repos.Tickets.Create(ctx, &ticket)
			if errors.Is(err, apperrors.ErrDuplicateCode) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to create ticket for event %d: %w", event.ID, err)
			}
			issued++
		}

		slog.Info("Generated event", "event_id", event.ID, "name", event.Name, "tickets", issued)
	}
	return nil
}

// Clear deletes events whose name starts with prefix
func (s *Seeder) Clear(ctx context.Context, prefix string) (int, error) {
	events, err := s.repos.Events.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, event := range events {
		if !strings.HasPrefix(event.Name, prefix+" ") {
			continue
		}
		if err := s.repos.Events.Delete(ctx, event.ID); err != nil && !errors.Is(err, apperrors.ErrEventNotFound) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func generateEvents(rnd *rand.Rand, n int, prefix string, now time.Time) []models.Event {
	events := make([]models.Event, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s %s #%d-%04d",
			prefix,
			kinds[rnd.Intn(len(kinds))],
			venues[rnd.Intn(len(venues))],
			i+1,
			rnd.Intn(10000))

		// от одного дня до полугода вперёд, ровно в час
		date := now.UTC().Add(time.Duration(rnd.Intn(180*24)+24) * time.Hour).Truncate(time.Hour)

		events = append(events, models.Event{Name: name, Date: date})
	}
	return events
}

func generateTickets(rnd *rand.Rand, eventID int64, n int) []models.Ticket {
	tickets := make([]models.Ticket, 0, n)
	for i := 0; i < n; i++ {
		tickets = append(tickets, models.Ticket{
			Owner:   owners[rnd.Intn(len(owners))],
			Code:    generateCode(rnd, 8),
			EventID: eventID,
		})
	}
	return tickets
}

func generateCode(rnd *rand.Rand, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(codeAlphabet[rnd.Intn(len(codeAlphabet))])
	}
	return b.String()
}
