// Package identity verifies bearer tokens against the external identity
// provider. The core consumes the result as opaque input.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"staylist/internal/adapters/observability"
	"staylist/internal/domain"
)

type Client struct {
	verifyURL string
	hc        *http.Client
}

func New(verifyURL string) (*Client, error) {
	if verifyURL == "" {
		return nil, fmt.Errorf("verify URL is required")
	}
	return &Client{
		verifyURL: verifyURL,
		hc:        &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *Client) Verify(ctx context.Context, token string) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL, nil)
	if err != nil {
		return domain.Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("identity", "verify", 0, time.Since(start))
		return domain.Identity{}, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("identity", "verify", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			UserID   string `json:"user_id"`
			FullName string `json:"full_name"`
			Admin    bool   `json:"admin"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return domain.Identity{}, err
		}
		if body.UserID == "" {
			return domain.Identity{}, fmt.Errorf("identity response missing user_id")
		}
		return domain.Identity{UserID: body.UserID, FullName: body.FullName, Admin: body.Admin}, nil

	case http.StatusUnauthorized, http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return domain.Identity{}, fmt.Errorf("token rejected")

	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Identity{}, fmt.Errorf("identity status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
