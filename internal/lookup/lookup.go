// Package lookup contains clients for the external data sources: current
// temperature by city and nutrition facts by product name.
//
// Both degrade to "no data" on any failure; callers never see an error.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/model"
)

// Weather resolves the current temperature in Celsius for a city.
type Weather interface {
	Temperature(ctx context.Context, city string) (float64, bool)
}

// Nutrition resolves calories per 100 g for a product name.
type Nutrition interface {
	Lookup(ctx context.Context, product string) (*model.FoodInfo, bool)
}

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
	userAgent      = "fittrack/1.0"
)

// getJSON performs a GET and decodes a 200 response into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w: %w", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w: %w", errs.ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return fmt.Errorf("status %d: %w: %s", resp.StatusCode, errs.ErrUnavailable, preview)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w: %w", errs.ErrUnavailable, err)
	}
	return nil
}

func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
