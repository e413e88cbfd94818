package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/ecomarket-sync/internal/model"
)

// HTTPPublisher posts sale events to the central ingestion endpoint. Only a
// 200 response counts as accepted.
type HTTPPublisher struct {
	client *http.Client
	url    string
}

// NewHTTPPublisher builds a publisher for the given central base URL.
func NewHTTPPublisher(centralURL string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(centralURL, "/") + "/sale-notification",
	}
}

// Publish posts the event as JSON.
func (p *HTTPPublisher) Publish(ctx context.Context, ev model.SaleEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post sale notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("central returned status %d", resp.StatusCode)
	}
	return nil
}
