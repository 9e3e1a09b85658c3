package filesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 5 * time.Minute
	listPageSize        = 20
)

var ErrOperationUnnamed = errors.New("operation has no name to poll")

// Config holds API settings for the hosted file-search and generation service.
type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client talks to the remote document-store and generation API. It is
// constructed once and injected into the services that need it.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// CreateStore creates a new remote store with the given display name.
func (c *Client) CreateStore(ctx context.Context, displayName string) (*Store, error) {
	var store Store
	body := map[string]string{"displayName": displayName}
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL+"/fileSearchStores", body, &store); err != nil {
		return nil, fmt.Errorf("create store failed: %w", err)
	}
	return &store, nil
}

// GetStore fetches a store by full resource name.
func (c *Client) GetStore(ctx context.Context, name string) (*Store, error) {
	var store Store
	if err := c.doJSON(ctx, http.MethodGet, c.resourceURL(name), nil, &store); err != nil {
		return nil, fmt.Errorf("get store failed: %w", err)
	}
	return &store, nil
}

// ListStores returns all remote stores, following pagination.
func (c *Client) ListStores(ctx context.Context) ([]Store, error) {
	var all []Store
	pageToken := ""
	for {
		var page struct {
			FileSearchStores []Store `json:"fileSearchStores"`
			NextPageToken    string  `json:"nextPageToken"`
		}
		u := c.cfg.BaseURL + "/fileSearchStores?pageSize=" + strconv.Itoa(listPageSize)
		if pageToken != "" {
			u += "&pageToken=" + url.QueryEscape(pageToken)
		}
		if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("list stores failed: %w", err)
		}
		all = append(all, page.FileSearchStores...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// ListDocuments returns all documents of the given store, following pagination.
func (c *Client) ListDocuments(ctx context.Context, storeName string) ([]StoreDocument, error) {
	var all []StoreDocument
	pageToken := ""
	for {
		var page struct {
			Documents     []StoreDocument `json:"documents"`
			NextPageToken string          `json:"nextPageToken"`
		}
		u := c.resourceURL(storeName) + "/documents?pageSize=" + strconv.Itoa(listPageSize)
		if pageToken != "" {
			u += "&pageToken=" + url.QueryEscape(pageToken)
		}
		if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("list documents failed: %w", err)
		}
		all = append(all, page.Documents...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// DeleteDocument removes one document from its store.
func (c *Client) DeleteDocument(ctx context.Context, name string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.resourceURL(name), nil, nil); err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}

// GetOperation re-fetches the state of a long-running operation.
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	var op Operation
	if err := c.doJSON(ctx, http.MethodGet, c.resourceURL(name), nil, &op); err != nil {
		return nil, fmt.Errorf("get operation failed: %w", err)
	}
	return &op, nil
}

// WaitForOperation polls op at the configured interval until it reports done,
// the poll timeout elapses, or ctx is cancelled. An operation without a name
// cannot be polled and fails immediately.
func (c *Client) WaitForOperation(ctx context.Context, op *Operation) (*Operation, error) {
	if op == nil {
		return nil, ErrOperationUnnamed
	}
	if op.Done {
		return op, nil
	}
	if op.Name == "" {
		return nil, ErrOperationUnnamed
	}

	deadline := time.NewTimer(c.cfg.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("operation %s not done after %s", op.Name, c.cfg.PollTimeout)
		case <-ticker.C:
			current, err := c.GetOperation(ctx, op.Name)
			if err != nil {
				return nil, err
			}
			if current.Done {
				return current, nil
			}
		}
	}
}

func (c *Client) resourceURL(name string) string {
	return c.cfg.BaseURL + "/" + strings.TrimLeft(name, "/")
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("response status %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response json failed: %w", err)
	}
	return nil
}
