package docs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

const maxPageBytes = 8 << 20

// Page is the extracted text of one documentation page.
type Page struct {
	Source string
	Title  string
	Text   string
}

// Fetcher downloads pages politely: one limiter shared by every request.
type Fetcher struct {
	http    *http.Client
	limiter *rate.Limiter
}

func NewFetcher(requestsPerSecond float64, timeout time.Duration) *Fetcher {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Fetcher{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (f *Fetcher) get(ctx context.Context, u string) (io.ReadCloser, string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "stepwise-docs")
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetch %s: %s", u, resp.Status)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Fetch downloads u and extracts its visible text.
func (f *Fetcher) Fetch(ctx context.Context, u string) (*Page, error) {
	body, contentType, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r, err := charset.NewReader(io.LimitReader(body, maxPageBytes), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u, err)
	}
	text, err := ExtractText(r)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", u, err)
	}
	return &Page{Source: u, Title: TitleFromURL(u), Text: text}, nil
}

var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"template": true,
}

// ExtractText returns the text nodes of an HTML document, one trimmed
// node per line, skipping scripts and styles.
func ExtractText(r io.Reader) (string, error) {
	var text strings.Builder
	tokenizer := html.NewTokenizer(r)
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return strings.TrimSpace(text.String()), nil
			}
			return "", fmt.Errorf("tokenizer error: %w", tokenizer.Err())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skipElements[string(name)] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skipElements[string(name)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			trimmed := bytes.TrimSpace(tokenizer.Text())
			if len(trimmed) > 0 {
				text.Write(trimmed)
				text.WriteRune('\n')
			}
		}
	}
}

// TitleFromURL derives a display title from the last path segment:
// ".../getting-started/" becomes "Getting Started".
func TitleFromURL(source string) string {
	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.Trim(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if p == "" {
		return source
	}
	return cases.Title(language.English).String(strings.ReplaceAll(p, "-", " "))
}

// WithFooter appends the markdown citation link the assistant is told to
// quote.
func (p *Page) WithFooter() string {
	return fmt.Sprintf("%s\n\n[%s](%s)", p.Text, p.Title, p.Source)
}
