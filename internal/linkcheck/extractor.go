// Package linkcheck verifies that internal links in the rendered site resolve
// to real pages or assets.
package linkcheck

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL        string // The URL or path
	Tag        string // HTML tag (a, img, link, script)
	Attribute  string // Attribute containing the link (href, src)
	IsInternal bool   // True if link is internal to the site
}

// linkAttributes maps tags to the attribute carrying their link target.
var linkAttributes = map[string]string{
	"a":      "href",
	"img":    "src",
	"link":   "href",
	"script": "src",
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string, baseURL string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, fmt.Errorf("open HTML file %s: %w", htmlPath, err)
	}
	defer func() { _ = file.Close() }()

	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all links from an HTML reader.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttributes[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key != attr || a.Val == "" {
						continue
					}
					links = append(links, Link{
						URL:        a.Val,
						Tag:        n.Data,
						Attribute:  attr,
						IsInternal: isInternal(a.Val, base),
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

func isInternal(raw string, base *url.URL) bool {
	if strings.HasPrefix(raw, "#") {
		return false // same-page fragment
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "mailto" || u.Scheme == "tel" || u.Scheme == "data" {
		return false
	}
	if u.Host == "" && u.Scheme == "" {
		return true
	}
	return base.Host != "" && u.Host == base.Host
}
