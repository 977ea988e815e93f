package extract

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/veracitylab/veracity/internal/model"
	"github.com/veracitylab/veracity/internal/util"
	"github.com/veracitylab/veracity/internal/worker"
)

// Content is the extracted-content contract handed to the fan-out. When
// extraction fails the orchestrator builds a marker value instead; the
// content-dependent sources then see no text to work with.
type Content struct {
	Text        string
	Title       string
	FinalURL    string
	ContentType string
}

// HasText reports whether there is any usable text for the
// content-dependent sources
func (c *Content) HasText() bool {
	return c != nil && strings.TrimSpace(c.Text) != ""
}

// Extractor fetches a page and reduces it to plain text plus metadata.
// It owns the outbound politeness concerns: robots.txt, per-domain rate
// limiting, body size caps.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots checking is disabled
	limiter    *worker.Limiter     // nil when rate limiting is disabled
}

// NewExtractor creates an extractor from the HTTP configuration
func NewExtractor(cfg model.HTTPConfig, limiter *worker.Limiter) *Extractor {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return &Extractor{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    robots,
		limiter:   limiter,
	}
}

// Extract fetches the URL and returns its plain text and metadata
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Content, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if e.robots != nil {
		allowed, _, err := e.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return nil, fmt.Errorf("fetch disallowed by robots.txt")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	// Read one byte past the cap to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > e.maxBytes {
		return nil, fmt.Errorf("body exceeds %d byte limit", e.maxBytes)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var text string
	if nodes := doc.Find("body").Nodes; len(nodes) > 0 {
		text = textContent(nodes[0])
	}
	if text == "" {
		return nil, fmt.Errorf("no body text")
	}

	return &Content{
		Text:        text,
		Title:       title,
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
	}, nil
}

// textContent walks the node tree collecting text, separating block
// fragments with single spaces the way a reader would see them.
func textContent(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, collapseWhitespace(t))
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate caps the extracted text for token-budgeted consumers. The cut
// backs up to a rune boundary so the result stays valid UTF-8.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
