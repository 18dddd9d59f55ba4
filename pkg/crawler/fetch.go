package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// Fetcher retrieves the raw text of a source, one candidate word per line.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) (string, error)
}

// FetchError reports a failed source. The crawl logs it and moves on.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetcherOptions tunes an HTTPFetcher. Zero values take the defaults.
type FetcherOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxBytes          int64
	UserAgent         string
}

const (
	defaultTimeout   = 30 * time.Second
	defaultRate      = 2
	defaultMaxBytes  = 8 << 20
	defaultUserAgent = "wordhunt/1.0 (Go)"
)

// HTTPFetcher fetches http(s) and file:// sources through one shared client. Requests
// are paced by a token bucket and bodies are cut at MaxBytes.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBytes  int64
	userAgent string
}

func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRate
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		MaxIdleConns:    16,
		IdleConnTimeout: 90 * time.Second,
	}
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout, Transport: transport},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		maxBytes:  opts.MaxBytes,
		userAgent: opts.UserAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return "", &FetchError{URL: src.URL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: src.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: src.URL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", &FetchError{URL: src.URL, Err: err}
	}

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type"), text) {
		return extractText(text)
	}
	return text, nil
}

func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body[:min(len(body), 64)]))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// extractText returns the visible words of an HTML page, one per line. Script and
// style contents are skipped.
func extractText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			for _, field := range strings.Fields(n.Data) {
				if w := strings.TrimFunc(field, notLetter); w != "" {
					b.WriteString(w)
					b.WriteByte('\n')
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String(), nil
}

func notLetter(r rune) bool { return !unicode.IsLetter(r) }
