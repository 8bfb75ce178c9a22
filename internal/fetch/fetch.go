package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Page is one page of a paginated source response.
type Page struct {
	// Items are the raw records extracted from the page's item array.
	Items []json.RawMessage
	// NextURL is the source-provided continuation link, empty on the last page.
	NextURL string
}

// envelope is the common wrapper shape of paginated source responses:
// an item array under a source-specific key plus a pagination block.
type envelope struct {
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

// Client fetches pages from rate-limited HTTP sources. It follows
// source-provided continuation links only — no client-side page guessing —
// and paces successive requests to stay under informal rate limits.
type Client struct {
	http     *http.Client
	log      *logrus.Logger
	cooldown time.Duration
	pacer    *rate.Limiter
}

// New creates a fetch client. cooldown is the wait applied after an HTTP
// 429; pageDelay is the minimum spacing between successful page requests.
func New(logger *logrus.Logger, cooldown, pageDelay time.Duration) *Client {
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	if pageDelay <= 0 {
		pageDelay = 400 * time.Millisecond
	}
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      logger,
		cooldown: cooldown,
		pacer:    rate.NewLimiter(rate.Every(pageDelay), 1),
	}
}

// FetchAll fetches every page starting from initialURL, following the
// pagination.next link and flattening the item array found under itemsKey.
//
// Error behavior is deliberately soft: a 404 means the entity does not exist
// upstream and yields an empty result; any other non-200 (after 429 retries)
// terminates the sequence with the pages collected so far. Callers treat a
// short sequence as "no more data", not failure. Only context cancellation
// is surfaced as an error, so a cancelled job can avoid advancing its
// watermark.
func (c *Client) FetchAll(ctx context.Context, initialURL string, headers map[string]string, itemsKey string) ([]Page, error) {
	var pages []Page
	next := initialURL

	for next != "" {
		body, status, err := c.get(ctx, next, headers)
		if err != nil {
			return pages, err
		}
		if status == http.StatusNotFound {
			return pages, nil
		}
		if status != http.StatusOK {
			c.log.WithFields(logrus.Fields{"url": next, "status": status}).
				Warn("source returned non-200, truncating page sequence")
			return pages, nil
		}

		page, err := parsePage(body, itemsKey)
		if err != nil {
			c.log.WithField("url", next).WithError(err).
				Warn("undecodable page, truncating page sequence")
			return pages, nil
		}
		if len(page.Items) == 0 {
			return pages, nil
		}

		pages = append(pages, page)
		next = page.NextURL

		if next != "" {
			if err := c.pacer.Wait(ctx); err != nil {
				return pages, err
			}
		}
	}

	return pages, nil
}

// Get fetches a whole, non-paginated document (committee manifests, header
// definitions). 429 handling matches FetchAll; any other non-200 is an error
// since there is no meaningful partial result for a single document.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, status, err := c.get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, status)
	}
	return body, nil
}

// GetStream opens a streaming body for bulk extracts that must not be
// buffered whole. The caller owns the ReadCloser.
func (c *Client) GetStream(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// get issues a single GET, transparently retrying the same URL after the
// cool-down on every 429. The retry is unbounded here; the job timeout on
// the caller's context is the real bound.
func (c *Client) get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			c.log.WithField("url", url).WithError(err).Warn("request failed, truncating page sequence")
			return nil, 0, nil
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			c.log.WithField("url", url).Infof("rate limited, cooling down %s", c.cooldown)
			select {
			case <-time.After(c.cooldown):
				continue
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
		}

		if readErr != nil {
			return nil, resp.StatusCode, nil
		}
		return body, resp.StatusCode, nil
	}
}

func parsePage(body []byte, itemsKey string) (Page, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, err
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(body, &keyed); err != nil {
		return Page{}, err
	}

	page := Page{NextURL: env.Pagination.Next}
	raw, ok := keyed[itemsKey]
	if !ok {
		return page, nil
	}
	if err := json.Unmarshal(raw, &page.Items); err != nil {
		return Page{}, fmt.Errorf("items key %q is not an array: %w", itemsKey, err)
	}
	return page, nil
}

// Items flattens a page sequence into a single record slice.
func Items(pages []Page) []json.RawMessage {
	var all []json.RawMessage
	for _, p := range pages {
		all = append(all, p.Items...)
	}
	return all
}
