// Package fetch acquires raw vendor matchup documents. It is a collaborator
// of the engine, not part of it: the engine never does I/O.
package fetch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/chromedp/chromedp"
	"github.com/klauspost/compress/zstd"

	"github.com/stattrust/matchup-compiler/internal/pkg/config"
)

// chromeMu serializes all Chrome usage so only one instance runs at a time.
var chromeMu sync.Mutex

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// stateGlobals are the page globals checked, in order, when the document is
// only embedded in a script rather than served as JSON.
const stateGlobalsJS = `JSON.stringify(window.__MATCHUP_STATE__ || window.__INITIAL_STATE__ || window.__PRELOADED_STATE__ || null)`

type Client struct {
	cfg        config.FetchConfig
	httpClient *http.Client
}

func NewClient(cfg config.FetchConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchDocument retrieves the vendor document from url. The plain HTTP path
// handles gzip/brotli/zstd encodings; when the response is not a JSON object
// and the browser fallback is enabled, the page is loaded headless and the
// embedded state globals are read instead.
func (c *Client) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	raw, err := c.fetchHTTP(ctx, url)
	if err != nil {
		return nil, err
	}
	if isJSONObject(raw) {
		return raw, nil
	}

	if !c.cfg.BrowserFallback {
		return nil, fmt.Errorf("response from %s is not a JSON object (enable browser_fallback for embedded documents)", url)
	}
	slog.Info("Response is not JSON, falling back to headless browser", "url", url)
	return c.fetchBrowser(ctx, url)
}

func (c *Client) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	ua := c.cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, br, zstd")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned status %d", url, resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		reader = zr
	}
	return io.ReadAll(reader)
}

func isJSONObject(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	var probe map[string]any
	return json.Unmarshal([]byte(trimmed), &probe) == nil
}

func (c *Client) fetchBrowser(ctx context.Context, url string) ([]byte, error) {
	chromeMu.Lock()
	defer chromeMu.Unlock()

	timeout := c.cfg.BrowserTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	browserCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(browserCtx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var serialized string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Evaluate(stateGlobalsJS, &serialized),
	)
	if err != nil {
		return nil, fmt.Errorf("browser capture of %s failed: %w", url, err)
	}
	if serialized == "" || serialized == "null" {
		return nil, fmt.Errorf("no embedded document found at %s", url)
	}
	if !isJSONObject([]byte(serialized)) {
		return nil, fmt.Errorf("embedded state at %s is not a JSON object", url)
	}
	return []byte(serialized), nil
}
