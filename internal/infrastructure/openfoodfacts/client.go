package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nutrigrade/backend/internal/domain"
	"golang.org/x/time/rate"
)

// productFields limits the v2 product payload to what the analyzer needs
var productFields = []string{
	"code",
	"product_name",
	"product_name_en",
	"ingredients_text",
	"ingredients_text_en",
	"ingredients_text_with_allergens_en",
}

const (
	maxAttempts  = 3
	maxBodyBytes = 1 << 20
)

// Client handles communication with the Open Food Facts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a new Open Food Facts API client
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	// Open Food Facts asks for at most 100 product reads per minute
	limiter := rate.NewLimiter(rate.Every(600*time.Millisecond), 10) // burst of 10 requests

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
	}
}

// SetDebug toggles request and response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait before the next attempt: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProductAPIFailure, err)
	}

	return resp, nil
}

// GetProduct fetches a product by barcode.
// Returns domain.ErrProductNotFound for unknown barcodes and domain.ErrProductAPIFailure once retries are exhausted.
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	params := url.Values{}
	params.Add("fields", strings.Join(productFields, ","))
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json?%s", c.baseURL, url.PathEscape(barcode), params.Encode())

	c.debugLog("GetProduct %s -> %s", barcode, reqURL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, c.backoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: waiting to retry: %w", domain.ErrProductAPIFailure, err)
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Printf("[OFF] Rate limiter error: %v", err)
			return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrProductAPIFailure, err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[OFF] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrProductAPIFailure, readErr)
			continue
		}

		c.debugLog("Status: %d, Body: %d bytes", resp.StatusCode, len(body))

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("[OFF] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, truncate(string(body), 200))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProductAPIFailure, resp.StatusCode)
			if !retryable(resp.StatusCode) {
				return nil, lastErr
			}
			continue
		}

		var productResp domain.OFFProductResponse
		if err := json.Unmarshal(body, &productResp); err != nil {
			log.Printf("[OFF] JSON decode error: %v", err)
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProductAPIFailure, err)
		}

		if productResp.Status != 1 || productResp.Product == nil {
			log.Printf("[OFF] Product %s not found (%s)", barcode, productResp.StatusVerbose)
			return nil, domain.ErrProductNotFound
		}

		return MapToProduct(barcode, productResp.Product), nil
	}

	log.Printf("[OFF] All retries failed for barcode: %s", barcode)
	return nil, lastErr
}

// wait sleeps for d unless the context ends first
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable reports whether a non-200 status is worth another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// debugLog logs only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[OFF] "+format, args...)
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
