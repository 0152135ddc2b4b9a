package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/centresolea/solea-events/internal/logger"
	"github.com/centresolea/solea-events/internal/textnorm"
)

const (
	UserAgent      = "Mozilla/5.0"
	ConnectTimeout = 5 * time.Second
	ReadTimeout    = 20 * time.Second
)

// Fetcher retrieves a page and parses it. Implementations must fail on non-2xx
// responses and honor ctx.
type Fetcher interface {
	FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// FetchError reports a failed page fetch.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch failed because a deadline expired.
func (e *FetchError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) || errors.Is(e.Err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// IsTimeout reports whether err is a FetchError caused by a deadline.
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Timeout()
}

// ClientOptions configures an HTTP fetcher. Zero values fall back to the package defaults.
type ClientOptions struct {
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Metrics        *logger.Metrics
}

// Client is the HTTP Fetcher used against the live site.
type Client struct {
	client    *http.Client
	userAgent string
	metrics   *logger.Metrics
}

// NewClient creates an HTTP fetcher. The connect timeout bounds dialing and the
// TLS handshake; the read timeout bounds the wait for response headers. The whole
// exchange is capped at their sum.
func NewClient(opts ClientOptions) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = ConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = ReadTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.ConnectTimeout + opts.ReadTimeout,
		},
		userAgent: opts.UserAgent,
		metrics:   opts.Metrics,
	}
}

// FetchDocument GETs rawURL and parses the body. The returned document's Url is
// the final URL after redirects, used to resolve relative links.
func (c *Client) FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	start := time.Now()
	doc, err := c.fetch(ctx, rawURL)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if IsTimeout(err) {
			outcome = "timeout"
		}
	}
	c.metrics.ObserveFetch(outcome, time.Since(start))

	return doc, err
}

func (c *Client) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("parsing HTML: %w", err)}
	}
	doc.Url = resp.Request.URL
	return doc, nil
}

// FetchText fetches rawURL and renders its visible text.
func FetchText(ctx context.Context, f Fetcher, rawURL string) (string, error) {
	doc, err := f.FetchDocument(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return PageText(doc), nil
}

// DocumentFromString parses an HTML string as if it had been fetched from pageURL.
func DocumentFromString(body, pageURL string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parsing page URL: %w", err)
		}
		doc.Url = u
	}
	return doc, nil
}

// blockAtoms start a new line in rendered text.
var blockAtoms = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Section: true, atom.Table: true, atom.Tr: true,
	atom.Td: true, atom.Th: true, atom.Ul: true,
}

var skippedAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
	atom.Head: true, atom.Svg: true, atom.Iframe: true,
}

// source line breaks inside text nodes are not visible breaks
var htmlSpace = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ", "\f", " ")

// PageText renders the visible text of doc with one line per block element,
// passed through textnorm.Normalize.
func PageText(doc *goquery.Document) string {
	var b strings.Builder
	for _, n := range doc.Nodes {
		renderText(&b, n)
	}
	return textnorm.Normalize(b.String())
}

func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(htmlSpace.Replace(n.Data))
		return
	case html.ElementNode:
		if skippedAtoms[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockAtoms[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}
