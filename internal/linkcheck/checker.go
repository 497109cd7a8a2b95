package linkcheck

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitenav/internal/config"
	"git.home.luguber.info/inful/sitenav/internal/logfields"
)

// BrokenLink is an internal link whose target does not exist in the rendered
// site.
type BrokenLink struct {
	Page string // Rendered page the link appears on (relative to output root)
	URL  string // The broken destination as written
}

// Checker verifies internal links in a rendered site directory.
type Checker struct {
	cfg       config.LinkCheckConfig
	baseURL   string
	publisher Publisher
}

// NewChecker creates a checker. publisher may be nil when event publishing is
// not configured.
func NewChecker(cfg config.LinkCheckConfig, baseURL string, publisher Publisher) *Checker {
	return &Checker{cfg: cfg, baseURL: baseURL, publisher: publisher}
}

// CheckSite walks every rendered HTML page under outputDir and verifies that
// internal link destinations exist as pages or assets. Broken links are
// returned; publishing failures only log.
func (c *Checker) CheckSite(ctx context.Context, outputDir, buildID string) ([]BrokenLink, error) {
	var broken []BrokenLink

	err := filepath.Walk(outputDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".html") {
			return nil
		}

		relPage, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}
		relPage = filepath.ToSlash(relPage)

		links, err := ExtractLinks(p, c.baseURL)
		if err != nil {
			return err
		}
		for _, link := range links {
			if !link.IsInternal {
				continue
			}
			if c.targetExists(outputDir, relPage, link.URL) {
				continue
			}
			broken = append(broken, BrokenLink{Page: relPage, URL: link.URL})
			slog.Warn("Broken internal link",
				logfields.File(relPage),
				slog.String("url", link.URL))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.publisher != nil {
		for _, b := range broken {
			event := &BrokenLinkEvent{
				BuildID:    buildID,
				Page:       b.Page,
				URL:        b.URL,
				DetectedAt: time.Now().UTC(),
			}
			if err := c.publisher.PublishBrokenLink(ctx, event); err != nil {
				slog.Warn("Failed to publish broken link event", logfields.Error(err))
			}
		}
	}

	return broken, nil
}

// targetExists resolves an internal destination against the rendered tree.
func (c *Checker) targetExists(outputDir, fromPage, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	target := u.Path
	if target == "" {
		return true // pure fragment or query on the current page
	}

	if !strings.HasPrefix(target, "/") {
		// Relative to the directory of the containing page.
		target = path.Join("/", path.Dir(fromPage), target)
	}
	target = strings.TrimPrefix(path.Clean(target), "/")

	// Pretty URL directory targets resolve to their index page.
	candidates := []string{
		filepath.Join(outputDir, filepath.FromSlash(target)),
		filepath.Join(outputDir, filepath.FromSlash(target), "index.html"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return true
		}
	}
	return false
}
