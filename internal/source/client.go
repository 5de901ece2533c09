package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/libgest/internal/libdoc"
)

// MaxSourceBytes bounds a single fetched document.
const MaxSourceBytes = 32 << 20

// HTTPClient fetches documents from the host tool's export endpoint:
//
//	GET {baseURL}/libraries/{libraryUuid}/items/{uuid}/source?type={2|4}
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchSource implements Fetcher.
func (c *HTTPClient) FetchSource(ctx context.Context, ref libdoc.LibraryRef, kind libdoc.Kind) (string, error) {
	if !ref.Valid() {
		return "", fmt.Errorf("fetch %s source: missing library or item uuid", kind)
	}
	u := fmt.Sprintf("%s/libraries/%s/items/%s/source?type=%s",
		c.baseURL, url.PathEscape(ref.LibraryUUID), url.PathEscape(ref.UUID), kind.LibraryType())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("get source: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%s %s: %w", kind, ref.Key(), ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: errorBody(resp)}
	default:
		return "", fmt.Errorf("get source %s: status %d: %s", ref.Key(), resp.StatusCode, errorBody(resp))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if len(body) > MaxSourceBytes {
		return "", fmt.Errorf("source %s exceeds %d bytes", ref.Key(), MaxSourceBytes)
	}
	return string(body), nil
}

// errorBody reads a short error description. HTML error pages are reduced to
// their title.
func errorBody(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if title := htmlTitle(string(raw)); title != "" {
			return title
		}
	}
	return strings.TrimSpace(string(raw))
}

func htmlTitle(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}
	return findTitle(doc)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var buf strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
			}
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// Close releases idle connections.
func (c *HTTPClient) Close() {
	c.httpClient.CloseIdleConnections()
}
