package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bulk-payment-backend/internal/models"
)

// Client polls the backend's status and result endpoints over HTTP, the same
// surface any external observer would use.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) FetchStatus(ctx context.Context, jobID string) (models.JobMeta, error) {
	var meta models.JobMeta
	err := c.getJSON(ctx, c.baseURL+"/api/payments/status/"+jobID, &meta)
	return meta, err
}

func (c *Client) FetchPage(ctx context.Context, jobID string, page int) ([]models.Row, error) {
	var body struct {
		Page     int          `json:"page"`
		PageSize int          `json:"pageSize"`
		Data     []models.Row `json:"data"`
	}
	url := c.baseURL + "/api/payments/result/" + jobID + "?page=" + strconv.Itoa(page)
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build poll request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("poll backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poll backend: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode poll response: %w", err)
	}
	return nil
}
