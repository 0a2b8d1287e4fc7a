package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"mytickets/internal/config"
	"mytickets/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

// maxHits bounds a single search. The listing is unpaginated.
const maxHits = 1000

// ElasticsearchClient представляет клиент для работы с индексом событий
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// eventDocument is what gets stored in the index
type eventDocument struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	IndexedAt time.Time `json:"indexed_at"`
}

// NewElasticsearchClient создает клиент и индекс, если его ещё нет
func NewElasticsearchClient(ctx context.Context, cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	initCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := client.ensureIndex(initCtx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func indexMapping() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"name_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id": map[string]any{
					"type": "long",
				},
				"name": map[string]any{
					"type":     "text",
					"analyzer": "name_analyzer",
					"fields": map[string]any{
						"keyword": map[string]any{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"date": map[string]any{
					"type":   "date",
					"format": "strict_date_optional_time||epoch_millis",
				},
				"indexed_at": map[string]any{
					"type": "date",
				},
			},
		},
	}
}

// ensureIndex создает индекс если он не существует
func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	return c.createIndex(ctx)
}

func (c *ElasticsearchClient) createIndex(ctx context.Context) error {
	mappingJSON, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// ResetIndex удаляет и заново создает индекс
func (c *ElasticsearchClient) ResetIndex(ctx context.Context) error {
	req := esapi.IndicesDeleteRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("failed to delete index: %s", res.String())
	}

	return c.createIndex(ctx)
}

func toDocument(event *models.Event) eventDocument {
	return eventDocument{
		ID:        event.ID,
		Name:      event.Name,
		Date:      event.Date,
		IndexedAt: time.Now().UTC(),
	}
}

// IndexEvent индексирует событие
func (c *ElasticsearchClient) IndexEvent(ctx context.Context, event *models.Event) error {
	eventJSON, err := json.Marshal(toDocument(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(event.ID, 10),
		Body:       bytes.NewReader(eventJSON),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// BulkIndex индексирует события пачкой; возвращает число успешно записанных документов
func (c *ElasticsearchClient) BulkIndex(ctx context.Context, events []models.Event) (uint64, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:      c.config.Index,
		Client:     c.client,
		NumWorkers: 2,
		FlushBytes: 1 << 20,
		Refresh:    "wait_for",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for i := range events {
		doc, err := json.Marshal(toDocument(&events[i]))
		if err != nil {
			return 0, fmt.Errorf("failed to marshal event %d: %w", events[i].ID, err)
		}

		id := events[i].ID
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatInt(id, 10),
			Body:       bytes.NewReader(doc),
			OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					slog.Error("Bulk index item failed", "event_id", id, "error", err)
					return
				}
				slog.Error("Bulk index item failed", "event_id", id, "type", res.Error.Type, "reason", res.Error.Reason)
			},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to queue event %d: %w", id, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return stats.NumIndexed, fmt.Errorf("%d of %d events failed to index", stats.NumFailed, len(events))
	}
	return stats.NumIndexed, nil
}

// DeleteEvent удаляет событие из индекса; отсутствующий документ не ошибка
func (c *ElasticsearchClient) DeleteEvent(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}

	return nil
}

// buildSearchQuery: fuzzy match on the name plus prefix match on the last word
func buildSearchQuery(query string) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"should": []map[string]any{
				{
					"match": map[string]any{
						"name": map[string]any{
							"query":     query,
							"fuzziness": "AUTO",
							"operator":  "and",
						},
					},
				},
				{
					"match_phrase_prefix": map[string]any{
						"name": map[string]any{
							"query": query,
						},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
}

// SearchEventIDs возвращает id событий, подходящих под запрос, по убыванию релевантности
func (c *ElasticsearchClient) SearchEventIDs(ctx context.Context, query string) ([]int64, error) {
	searchRequest := map[string]any{
		"query":   buildSearchQuery(strings.TrimSpace(query)),
		"_source": []string{"id"},
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"id": map[string]any{"order": "asc"}},
		},
		"size": maxHits,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(searchJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		ids[i] = hit.Source.ID
	}

	return ids, nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
