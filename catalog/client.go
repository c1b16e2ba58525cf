package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a catalog server. Every method returns an error on
// any transport or status failure; callers treat those as non-fatal
// and never let them touch playback.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for a catalog base URL.
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// List fetches one page of catalog entries.
func (c *Client) List(ctx context.Context, q Query) ([]Entry, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if len(q.Tags) > 0 {
		v.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	var page struct {
		Patterns []Entry `json:"patterns"`
	}
	if err := c.do(ctx, http.MethodGet, "/patterns/?"+v.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return page.Patterns, nil
}

// Get fetches one entry.
func (c *Client) Get(ctx context.Context, id string) (Entry, error) {
	var e Entry
	err := c.do(ctx, http.MethodGet, "/patterns/"+id, nil, &e)
	return e, err
}

// Create publishes a pattern.
func (c *Client) Create(ctx context.Context, name string, tags []string, doc PatternDoc) (Entry, error) {
	var e Entry
	err := c.do(ctx, http.MethodPost, "/patterns/", createRequest{Name: name, Tags: tags, Pattern: doc}, &e)
	return e, err
}

// Load records that a pattern was loaded.
func (c *Client) Load(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/patterns/"+id+"/load", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Buffer
	if in != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return err
		}
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("catalog: %s", e.Error)
		}
		return fmt.Errorf("catalog: status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
