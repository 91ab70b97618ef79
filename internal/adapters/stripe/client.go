// Package stripe is a minimal client for the Stripe Products API, covering
// the one call the pricing manager needs: minting a product with an inline
// default price.
package stripe

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"staylist/internal/adapters/observability"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// product is the slice of the response we care about. default_price comes
// back as a bare ID string for inline-created prices, but can be an expanded
// object; accept both.
type product struct {
	ID           string          `json:"id"`
	DefaultPrice json.RawMessage `json:"default_price"`
}

func (p product) defaultPriceID() string {
	var s string
	if err := json.Unmarshal(p.DefaultPrice, &s); err == nil {
		return s
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(p.DefaultPrice, &obj); err == nil {
		return obj.ID
	}
	return ""
}

// CreatePriceRecord creates a product whose default price carries the given
// amount in minor units, and returns the price record's ID. Price records are
// immutable once created; callers mint a new one per reconciliation.
func (c *Client) CreatePriceRecord(ctx context.Context, name, description string, unitAmountMinor int64, currency string) (string, error) {
	form := url.Values{}
	form.Set("name", name)
	if description != "" {
		form.Set("description", description)
	}
	form.Set("default_price_data[unit_amount]", strconv.FormatInt(unitAmountMinor, 10))
	form.Set("default_price_data[currency]", currency)

	var p product
	if err := c.post(ctx, c.base+"/v1/products", form, &p); err != nil {
		return "", err
	}
	id := p.defaultPriceID()
	if id == "" {
		return "", fmt.Errorf("product %s has no default price", p.ID)
	}
	return id, nil
}

// post performs a form POST with client-side rate limiting and bounded
// retries on 429/5xx, honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, u string, form url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	body := form.Encode()
	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("stripe", "products", 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("stripe", "products", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("stripe %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// Stripe error bodies are JSON; keep a short excerpt for the log.
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("stripe status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if
// absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
