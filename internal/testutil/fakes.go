package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"mytickets/internal/cache"
	"mytickets/internal/models"
)

// Message is a published domain message
type Message struct {
	Subject string
	Data    any
}

// Publisher records every published message
type Publisher struct {
	mu       sync.Mutex
	Err      error
	messages []Message
}

func (p *Publisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.messages = append(p.messages, Message{Subject: subject, Data: data})
	return nil
}

func (p *Publisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}

func (p *Publisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	subjects := make([]string, len(p.messages))
	for i, m := range p.messages {
		subjects[i] = m.Subject
	}
	return subjects
}

// Cache is a map-backed events cache
type Cache struct {
	mu          sync.Mutex
	events      map[int64]models.Event
	list        []models.Event
	hasList     bool
	version     int64
	Invalidated []int64
}

func NewCache() *Cache {
	return &Cache{events: map[int64]models.Event{}}
}

func (c *Cache) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	event, ok := c.events[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &event, nil
}

func (c *Cache) Version(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *Cache) SetEvent(_ context.Context, event *models.Event, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return cache.ErrStaleVersion
	}
	c.events[event.ID] = *event
	return nil
}

func (c *Cache) GetEventList(_ context.Context) ([]models.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasList {
		return nil, cache.ErrCacheMiss
	}
	return append([]models.Event{}, c.list...), nil
}

func (c *Cache) SetEventList(_ context.Context, events []models.Event, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return cache.ErrStaleVersion
	}
	c.list = append([]models.Event{}, events...)
	c.hasList = true
	return nil
}

func (c *Cache) InvalidateEvent(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, id)
	c.list = nil
	c.hasList = false
	c.version++
	c.Invalidated = append(c.Invalidated, id)
	return nil
}

// Searcher matches event names by lowercase prefix of any word. Err makes
// every search fail.
type Searcher struct {
	mu     sync.Mutex
	Err    error
	events map[int64]string
}

var ErrSearchUnavailable = errors.New("search unavailable")

func NewSearcher() *Searcher {
	return &Searcher{events: map[int64]string{}}
}

func (s *Searcher) Index(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event.Name
}

func (s *Searcher) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
}

func (s *Searcher) SearchEventIDs(_ context.Context, query string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	needle := strings.ToLower(query)
	ids := []int64{}
	for id, name := range s.events {
		for _, word := range strings.Fields(strings.ToLower(name)) {
			if strings.HasPrefix(word, needle) {
				ids = append(ids, id)
				break
			}
		}
	}
	// newest first, so ordering differs from the id-ordered listing
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids, nil
}
