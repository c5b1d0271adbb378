package render

import (
	"context"
	"io"
	"strings"
	"time"

	"sjsage522/prisagent/helpers"
	"sjsage522/prisagent/logger"
	apperrors "sjsage522/prisagent/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FetchFunc retrieves a document body
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// HTTPRenderer serves the Renderer contract from static markup. It runs no scripts,
// so scrolling and idle waits are no-ops.
type HTTPRenderer struct {
	fetch  FetchFunc
	url    string
	markup string
	doc    *goquery.Document
	log    *logger.Logger
}

// NewHTTPRenderer creates a renderer that fetches pages with browser-like headers
func NewHTTPRenderer() *HTTPRenderer {
	return NewHTTPRendererWithFetch(helpers.FetchWithRandomHeaders)
}

// NewHTTPRendererWithFetch creates a renderer with a custom fetch function
func NewHTTPRendererWithFetch(fetch FetchFunc) *HTTPRenderer {
	return &HTTPRenderer{
		fetch: fetch,
		log:   logger.ForRenderer(BackendHTTP),
	}
}

// Navigate fetches url and parses it. A failed navigation leaves no page loaded.
func (r *HTTPRenderer) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	r.url, r.markup, r.doc = "", "", nil

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reader, err := r.fetch(ctx, url)
	if err != nil {
		return apperrors.NewRenderer(url, "fetch", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return apperrors.NewRenderer(url, "read body", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return apperrors.NewRenderer(url, "parse markup", err)
	}

	r.url = url
	r.markup = string(body)
	r.doc = doc
	r.log.Debug().Str("url", url).Int("bytes", len(body)).Msg("page loaded")
	return nil
}

// WaitForIdle is a no-op for static markup
func (r *HTTPRenderer) WaitForIdle(ctx context.Context, timeout time.Duration) {}

// ScrollBy is a no-op for static markup
func (r *HTTPRenderer) ScrollBy(ctx context.Context, pixels int) error {
	if r.doc == nil {
		return apperrors.NewRenderer("", "scroll before navigate", nil)
	}
	return nil
}

// DismissConsent is a no-op for static markup
func (r *HTTPRenderer) DismissConsent(ctx context.Context) {}

// VisibleText renders the body text with block elements on their own lines
func (r *HTTPRenderer) VisibleText(ctx context.Context) string {
	if r.doc == nil {
		return ""
	}

	body := r.doc.Find("body")
	if body.Length() == 0 {
		return r.markup
	}

	var b strings.Builder
	for _, n := range body.Nodes {
		writeVisibleText(&b, n)
	}
	return collapseLines(b.String())
}

// RawMarkup returns the fetched document
func (r *HTTPRenderer) RawMarkup(ctx context.Context) (string, error) {
	if r.doc == nil {
		return "", apperrors.NewRenderer("", "no page loaded", nil)
	}
	return r.markup, nil
}

// QueryAttribute collects attr from every element matching selector
func (r *HTTPRenderer) QueryAttribute(ctx context.Context, selector, attr string) ([]string, error) {
	if r.doc == nil {
		return nil, apperrors.NewRenderer(selector, "no page loaded", nil)
	}

	var values []string
	r.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		if value, ok := s.Attr(attr); ok {
			values = append(values, value)
		}
	})
	return values, nil
}

// Title returns the text of the document's title element
func (r *HTTPRenderer) Title(ctx context.Context) (string, error) {
	if r.doc == nil {
		return "", apperrors.NewRenderer("", "no page loaded", nil)
	}
	return strings.TrimSpace(r.doc.Find("title").First().Text()), nil
}

// Close drops the loaded document
func (r *HTTPRenderer) Close() error {
	r.doc = nil
	r.markup = ""
	return nil
}

var hiddenElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Head:     true,
	atom.Svg:      true,
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true, atom.Section: true,
	atom.Table: true, atom.Tr: true, atom.Ul: true,
}

func writeVisibleText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.ElementNode:
		if hiddenElements[n.DataAtom] {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisibleText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}

// collapseLines squeezes horizontal whitespace and drops blank lines. No-break
// spaces are kept since prices use them as thousands separators.
func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.FieldsFunc(line, isCollapsibleSpace), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func isCollapsibleSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f' || r == '\v'
}
