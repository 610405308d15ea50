// Package source is the outbound HTTP layer shared by the platform adapters:
// JSON APIs, paged item lists and scraped HTML pages.
package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	userAgent       = "spigell/gig-hunter (spigelly@gmail.com)"
	contentType     = "application/json"
	contentEncoding = "gzip"

	DefaultTimeout = 10 * time.Second
)

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status from %s: %s", e.URL, e.Status)
}

type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	Header     http.Header
	logger     *zap.Logger
}

func New(logger *zap.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
		Header:    make(http.Header),
		logger:    logger,
	}
}

// GetItems makes GET request and decodes the list found at path (dotted keys,
// e.g. "result.projects") into target, which must be a pointer to a slice.
// A missing path yields an empty result.
func (c *Client) GetItems(ctx context.Context, endpoint string, q url.Values, path string, target any) error {
	data, err := c.get(ctx, endpoint, q, contentType)
	if err != nil {
		return err
	}

	var response map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&response); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}

	items, ok := Lookup(response, path)
	if !ok || items == nil {
		return nil
	}

	c.logger.Debug("got items", zap.String("url", endpoint), zap.String("path", path))

	return Decode(items, target)
}

// GetDocument makes GET request and parses the HTML body.
func (c *Client) GetDocument(ctx context.Context, endpoint string, q url.Values) (*goquery.Document, error) {
	data, err := c.get(ctx, endpoint, q, "text/html")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", endpoint, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}
	req = c.setHeaders(req)
	req.Header.Set("Accept", accept)

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: endpoint, Code: resp.StatusCode, Status: resp.Status}
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	for key, values := range c.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// Decode converts a generic JSON value into target using json tags.
// Numbers and strings are converted loosely since sources disagree on types.
func Decode(input, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	return nil
}

// Lookup walks a dotted path through nested JSON objects.
func Lookup(data map[string]any, path string) (any, bool) {
	if path == "" {
		return data, true
	}

	var current any = data
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
