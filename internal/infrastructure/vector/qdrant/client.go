package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hrcore/talent-match/internal/core/domain"
)

// Client talks to Qdrant over its HTTP API. Collections are created lazily
// on first upsert; the match pipeline creates and drops a scratch collection
// per run, so creation has to be cheap and idempotent.
type Client struct {
	baseURL    string
	httpClient *http.Client

	ensureMu sync.Mutex
	ensured  map[string]int // collection -> vector size
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		ensured:    make(map[string]int),
	}
}

func (c *Client) Upsert(ctx context.Context, collection string, record domain.VectorRecord, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("qdrant upsert: empty vector for %s", record.ID)
	}
	if err := c.ensureCollection(ctx, collection, len(vector)); err != nil {
		return err
	}

	payload := map[string]any{
		"id":        record.ID,
		"text":      record.Text,
		"meta_data": record.Metadata,
	}
	reqBody := map[string]any{
		"points": []map[string]any{{
			// Qdrant point IDs must be UUIDs or integers. Deriving the UUID
			// from the logical ID keeps repeated upserts idempotent.
			"id":      uuid.NewSHA1(uuid.NameSpaceOID, []byte(record.ID)).String(),
			"vector":  vector,
			"payload": payload,
		}},
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, collection)
	return c.do(ctx, http.MethodPut, url, reqBody, nil, "upsert")
}

func (c *Client) Query(ctx context.Context, collection string, vector []float32, limit int) ([]domain.VectorHit, error) {
	reqBody := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	hits := make([]domain.VectorHit, 0, len(searchResp.Result))
	for _, result := range searchResp.Result {
		hit := domain.VectorHit{
			ID:   payloadString(result.Payload, "id"),
			Text: payloadString(result.Payload, "text"),
			// Cosine score is similarity in [−1, 1]; the pipeline ranks by
			// ascending distance.
			Distance: 1 - result.Score,
		}
		if meta, ok := result.Payload["meta_data"].(map[string]any); ok {
			hit.Metadata = meta
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Clear removes every point but keeps the collection. A missing collection
// counts as already clear.
func (c *Client) Clear(ctx context.Context, collection string) error {
	reqBody := map[string]any{"filter": map[string]any{}}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, collection)
	err := c.do(ctx, http.MethodPost, url, reqBody, nil, "clear")
	if isNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) DropCollection(ctx context.Context, collection string) error {
	c.ensureMu.Lock()
	delete(c.ensured, collection)
	c.ensureMu.Unlock()

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collection)
	err := c.do(ctx, http.MethodDelete, url, nil, nil, "drop collection")
	if isNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) ensureCollection(ctx context.Context, collection string, vectorSize int) error {
	c.ensureMu.Lock()
	if size, ok := c.ensured[collection]; ok && size == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collection)
	err := c.do(ctx, http.MethodPut, url, reqBody, nil, "create collection")
	if err != nil && !isConflict(err) {
		return err
	}

	c.ensureMu.Lock()
	c.ensured[collection] = vectorSize
	c.ensureMu.Unlock()
	return nil
}

type statusError struct {
	operation  string
	statusCode int
	status     string
	body       string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("qdrant %s status: %s", e.operation, e.status)
	}
	return fmt.Sprintf("qdrant %s status: %s: %s", e.operation, e.status, e.body)
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any, operation string) error {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			operation:  operation,
			statusCode: resp.StatusCode,
			status:     resp.Status,
			body:       strings.TrimSpace(string(raw)),
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var statusErr *statusError
	return errors.As(err, &statusErr) && statusErr.statusCode == http.StatusNotFound
}

func isConflict(err error) bool {
	var statusErr *statusError
	return errors.As(err, &statusErr) && statusErr.statusCode == http.StatusConflict
}

func payloadString(payload map[string]any, key string) string {
	if value, ok := payload[key].(string); ok {
		return value
	}
	return ""
}
