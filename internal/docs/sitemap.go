// Package docs builds and queries the documentation index behind the docs
// assistant: sitemap loading, page text extraction, chunking, embedding and
// MMR retrieval.
package docs

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// LoadSitemap returns the page URLs listed in a sitemap. location is a
// local path or an http(s) URL. Nested sitemap indexes are followed one
// level deep.
func LoadSitemap(ctx context.Context, f *Fetcher, location string) ([]string, error) {
	return loadSitemap(ctx, f, location, 1)
}

func loadSitemap(ctx context.Context, f *Fetcher, location string, depth int) ([]string, error) {
	data, err := readLocation(ctx, f, location)
	if err != nil {
		return nil, err
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sitemap %s: %w", location, err)
	}

	var urls []string
	seen := map[string]bool{}
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	for _, u := range doc.URLs {
		add(u.Loc)
	}
	if depth > 0 {
		for _, sm := range doc.Sitemaps {
			nested, err := loadSitemap(ctx, f, strings.TrimSpace(sm.Loc), depth-1)
			if err != nil {
				return nil, err
			}
			for _, u := range nested {
				add(u)
			}
		}
	}
	return urls, nil
}

func readLocation(ctx context.Context, f *Fetcher, location string) ([]byte, error) {
	if isURL(location) {
		if f == nil {
			return nil, fmt.Errorf("remote sitemap %s needs a fetcher", location)
		}
		body, _, err := f.get(ctx, location)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return io.ReadAll(io.LimitReader(body, maxPageBytes))
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read sitemap: %w", err)
	}
	return data, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
