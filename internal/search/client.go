package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/verdanthq/verdant/internal/telemetry"
)

// Index names
const (
	IndexUsers = "users"
	IndexPosts = "posts"
	IndexShops = "shops"
)

// Client wraps the Elasticsearch client with Verdant-specific functionality
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates a new Elasticsearch client. Requests are traced
// through the shared OpenTelemetry transport.
func NewClient() (*Client, error) {
	esURL := os.Getenv("ELASTICSEARCH_URL")
	if esURL == "" {
		esURL = "http://localhost:9200"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
		Transport: telemetry.NewTransport(http.DefaultTransport),
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{es: es}

	// Verify connection
	if _, err := es.Info(); err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	return client, nil
}

// InitializeIndices creates the search indices with proper mappings
func (c *Client) InitializeIndices(ctx context.Context) error {
	if err := c.createUsersIndex(ctx); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	if err := c.createPostsIndex(ctx); err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	if err := c.createShopsIndex(ctx); err != nil {
		return fmt.Errorf("failed to create shops index: %w", err)
	}
	return nil
}

func (c *Client) createUsersIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"username": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type": "keyword",
						},
					},
				},
				"display_name": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"bio": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"genres": map[string]interface{}{
					"type": "keyword",
				},
				"follower_count": map[string]interface{}{
					"type": "integer",
				},
				"created_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}

	return c.createIndex(ctx, IndexUsers, mapping)
}

func (c *Client) createPostsIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"author_id": map[string]interface{}{
					"type": "keyword",
				},
				"body": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"genres": map[string]interface{}{
					"type": "keyword",
				},
				"like_count": map[string]interface{}{
					"type": "integer",
				},
				"created_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}

	return c.createIndex(ctx, IndexPosts, mapping)
}

func (c *Client) createShopsIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"owner_id": map[string]interface{}{
					"type": "keyword",
				},
				"name": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"description": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"location": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"genres": map[string]interface{}{
					"type": "keyword",
				},
				"review_count": map[string]interface{}{
					"type": "integer",
				},
				"created_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}

	return c.createIndex(ctx, IndexShops, mapping)
}

// createIndex creates an Elasticsearch index with the given mapping
func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	res, err := c.es.Indices.Exists([]string{indexName})
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()

	// Index already exists
	if res.StatusCode == 200 {
		return nil
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(mappingJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return decodeError(res.Body, res.Status(), "creating index")
	}

	return nil
}

// IndexDocument indexes a document into the given index
func (c *Client) IndexDocument(ctx context.Context, index, docID string, doc map[string]interface{}) (err error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	ctx, span := telemetry.StartExternalCall(ctx, telemetry.ExternalCall{
		Service:   "elasticsearch",
		Operation: "index",
		Resource:  index,
	})
	statusCode := 0
	defer func() { telemetry.EndExternalCall(span, err, statusCode) }()

	res, err := c.es.Index(index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(docID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()
	statusCode = res.StatusCode

	if res.IsError() {
		return decodeError(res.Body, res.Status(), "indexing document")
	}

	return nil
}

// DeleteDocument removes a document from the given index. A missing
// document is not an error.
func (c *Client) DeleteDocument(ctx context.Context, index, docID string) (err error) {
	ctx, span := telemetry.StartExternalCall(ctx, telemetry.ExternalCall{
		Service:   "elasticsearch",
		Operation: "delete",
		Resource:  index,
	})
	statusCode := 0
	defer func() { telemetry.EndExternalCall(span, err, statusCode) }()

	res, err := c.es.Delete(index, docID,
		c.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	defer res.Body.Close()
	statusCode = res.StatusCode

	if res.IsError() && res.StatusCode != 404 {
		return decodeError(res.Body, res.Status(), "deleting document")
	}

	return nil
}

// Hit is a search result: a document ID plus its relevance score
type Hit struct {
	ID    string
	Score float64
}

// SearchIDs runs a query against an index and returns document IDs in
// relevance order along with the total hit count.
func (c *Client) SearchIDs(ctx context.Context, index string, query map[string]interface{}) (_ []Hit, _ int, err error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search query: %w", err)
	}

	ctx, span := telemetry.StartExternalCall(ctx, telemetry.ExternalCall{
		Service:   "elasticsearch",
		Operation: "search",
		Resource:  index,
	})
	statusCode := 0
	defer func() { telemetry.EndExternalCall(span, err, statusCode) }()

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(queryJSON)),
		c.es.Search.WithSourceExcludes("*"),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()
	statusCode = res.StatusCode

	if res.IsError() {
		return nil, 0, decodeError(res.Body, res.Status(), "searching")
	}

	var searchResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID    string  `json:"_id"`
				Score float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(searchResp.Hits.Hits))
	for _, h := range searchResp.Hits.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}

	return hits, searchResp.Hits.Total.Value, nil
}

func decodeError(body io.Reader, status, action string) error {
	var errResp map[string]interface{}
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return fmt.Errorf("error response [%s]", status)
	}
	return fmt.Errorf("error %s: [%s] %v", action, status, errResp["error"])
}
