// Package build orchestrates a full site build: content scan, navigation
// resolution, rendering, link verification, and the incremental cache.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitenav/internal/buildcache"
	"git.home.luguber.info/inful/sitenav/internal/config"
	"git.home.luguber.info/inful/sitenav/internal/content"
	snerrors "git.home.luguber.info/inful/sitenav/internal/errors"
	"git.home.luguber.info/inful/sitenav/internal/gitsource"
	"git.home.luguber.info/inful/sitenav/internal/linkcheck"
	"git.home.luguber.info/inful/sitenav/internal/logfields"
	"git.home.luguber.info/inful/sitenav/internal/markdown"
	"git.home.luguber.info/inful/sitenav/internal/metrics"
	"git.home.luguber.info/inful/sitenav/internal/render"
	"git.home.luguber.info/inful/sitenav/internal/sidebar"
)

// Options tune a single build pass.
type Options struct {
	OutputDir string
	Fresh     bool // Bypass the incremental cache
	Strict    bool // Broken in-body links fail the build
}

// Report summarizes a completed build.
type Report struct {
	BuildID     string
	Skipped     bool // True when the cache proved nothing changed
	Pages       int
	Assets      int
	NavEntries  int
	BrokenLinks []linkcheck.BrokenLink
	Duration    time.Duration
}

// Builder runs site builds for one configuration.
type Builder struct {
	cfg       *config.Config
	recorder  metrics.Recorder
	publisher linkcheck.Publisher
	git       *gitsource.Client
}

// NewBuilder creates a builder. recorder may be nil (metrics disabled) and
// publisher may be nil (event publishing disabled).
func NewBuilder(cfg *config.Config, recorder metrics.Recorder, publisher linkcheck.Publisher) *Builder {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Builder{
		cfg:       cfg,
		recorder:  recorder,
		publisher: publisher,
		git:       gitsource.NewClient(""),
	}
}

// Build runs one full build pass.
func (b *Builder) Build(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{BuildID: uuid.NewString()}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = b.cfg.Output.Directory
	}

	slog.Info("Starting site build",
		logfields.BuildID(report.BuildID),
		logfields.Path(outputDir))

	contentDir, err := b.contentDir()
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, err
	}

	tree, err := timedStage(b.recorder, "scan", func() (*content.Tree, error) {
		return content.Scan(contentDir)
	})
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, err
	}

	nav, err := timedStage(b.recorder, "resolve", func() (*sidebar.NavigationTree, error) {
		return sidebar.Resolve(&b.cfg.Sidebar, tree)
	})
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, snerrors.Wrap(err, snerrors.CategoryNavigation, snerrors.SeverityFatal, "resolve navigation")
	}
	report.NavEntries = countEntries(nav)
	b.recorder.SetNavigationEntries(report.NavEntries)

	specHash, snap, err := b.snapshot(tree)
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, err
	}

	var cache *buildcache.Cache
	if b.cfg.Cache.Enabled {
		cache, err = buildcache.Open(b.cfg.Cache.Path)
		if err != nil {
			slog.Warn("Build cache unavailable, rebuilding", logfields.Error(err))
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	if cache != nil && !opts.Fresh {
		unchanged, err := cache.Unchanged(ctx, specHash, snap)
		if err != nil {
			slog.Warn("Build cache check failed, rebuilding", logfields.Error(err))
		} else if unchanged {
			report.Skipped = true
			report.Duration = time.Since(start)
			slog.Info("Nothing changed since last build, skipping render",
				logfields.BuildID(report.BuildID))
			b.recorder.IncBuildOutcome("success")
			return report, nil
		}
	}

	renderer, err := render.NewRenderer(b.cfg, outputDir)
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, err
	}
	renderRes, err := timedStage(b.recorder, "render", func() (render.Result, error) {
		return renderer.Render(tree, nav)
	})
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, snerrors.Wrap(err, snerrors.CategoryRender, snerrors.SeverityFatal, "render site")
	}
	report.Pages = renderRes.PagesRendered
	report.Assets = renderRes.AssetsCopied
	b.recorder.SetPagesRendered(report.Pages)

	checker := linkcheck.NewChecker(b.cfg.LinkCheck, b.cfg.Site.BaseURL, b.publisher)
	broken, err := timedStage(b.recorder, "linkcheck", func() ([]linkcheck.BrokenLink, error) {
		return checker.CheckSite(ctx, outputDir, report.BuildID)
	})
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, fmt.Errorf("verify links: %w", err)
	}
	report.BrokenLinks = broken
	b.recorder.IncBrokenLinks(len(broken))
	if len(broken) > 0 && (opts.Strict || b.cfg.LinkCheck.Strict) {
		b.recorder.IncBuildOutcome("failed")
		return report, snerrors.New(snerrors.CategoryValidation, snerrors.SeverityFatal,
			fmt.Sprintf("%d broken internal links (strict mode)", len(broken)))
	}

	if cache != nil {
		if err := cache.StoreSnapshot(ctx, report.BuildID, specHash, snap); err != nil {
			slog.Warn("Failed to update build cache", logfields.Error(err))
		}
	}

	report.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome("success")

	slog.Info("Build completed",
		logfields.BuildID(report.BuildID),
		slog.Int("pages", report.Pages),
		slog.Int("nav_entries", report.NavEntries),
		slog.Int("broken_links", len(report.BrokenLinks)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

// Check resolves the navigation without writing output. It surfaces the same
// fatal broken-reference diagnostics as a full build and warns about body
// links that resolve to no document.
func (b *Builder) Check(ctx context.Context) (*sidebar.NavigationTree, error) {
	contentDir, err := b.contentDir()
	if err != nil {
		return nil, err
	}
	tree, err := content.Scan(contentDir)
	if err != nil {
		return nil, err
	}
	nav, err := sidebar.Resolve(&b.cfg.Sidebar, tree)
	if err != nil {
		return nil, fmt.Errorf("resolve navigation: %w", err)
	}
	for _, bad := range brokenBodyLinks(tree) {
		slog.Warn("Body link resolves to no document", slog.String("link", bad))
	}
	return nav, nil
}

// brokenBodyLinks scans every document body for root-relative document links
// that match no slug in the tree. Links to assets, external URLs, and
// fragments are left to the post-render HTML check.
func brokenBodyLinks(tree *content.Tree) []string {
	var broken []string
	for _, doc := range tree.Documents() {
		for _, link := range markdown.ExtractLinks(doc.Body) {
			if link.Kind != markdown.LinkKindInline {
				continue
			}
			dest := link.Destination
			if !strings.HasPrefix(dest, "/") {
				continue
			}
			if i := strings.IndexAny(dest, "#?"); i >= 0 {
				dest = dest[:i]
			}
			slugVal := strings.Trim(dest, "/")
			if slugVal == "" {
				continue
			}
			// A dotted final segment is an asset path, not a document slug.
			if last := slugVal[strings.LastIndex(slugVal, "/")+1:]; strings.Contains(last, ".") {
				continue
			}
			if _, ok := tree.Lookup(slugVal); !ok {
				broken = append(broken, fmt.Sprintf("%s -> %s", doc.RelativePath, link.Destination))
			}
		}
	}
	return broken
}

// contentDir returns the local content directory, checking out the git source
// first when one is configured.
func (b *Builder) contentDir() (string, error) {
	if b.cfg.Source == nil {
		return b.cfg.Content.Directory, nil
	}
	dir, err := b.git.Checkout(b.cfg.Source)
	if err != nil {
		return "", snerrors.Wrap(err, snerrors.CategoryGit, snerrors.SeverityFatal, "checkout content source")
	}
	return dir, nil
}

// snapshot hashes every source document plus the sidebar specification and
// site settings; any difference forces a rebuild.
func (b *Builder) snapshot(tree *content.Tree) (string, buildcache.Snapshot, error) {
	snap := make(buildcache.Snapshot)
	for _, doc := range tree.Documents() {
		metaBytes, err := yaml.Marshal(doc.Meta)
		if err != nil {
			return "", nil, fmt.Errorf("hash metadata of %s: %w", doc.RelativePath, err)
		}
		snap[doc.RelativePath] = buildcache.HashBytes(append(metaBytes, doc.Body...))
	}
	// Assets are tracked by presence only; a changed asset with the same path
	// does not invalidate the cache.
	for _, asset := range tree.Assets() {
		snap[asset.RelativePath] = "asset"
	}

	specBytes, err := yaml.Marshal(struct {
		Sidebar sidebar.Spec      `yaml:"sidebar"`
		Site    config.SiteConfig `yaml:"site"`
	}{b.cfg.Sidebar, b.cfg.Site})
	if err != nil {
		return "", nil, fmt.Errorf("hash configuration: %w", err)
	}
	return buildcache.HashBytes(specBytes), snap, nil
}

func timedStage[T any](rec metrics.Recorder, name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	rec.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		rec.IncStageResult(name, metrics.ResultFatal)
	} else {
		rec.IncStageResult(name, metrics.ResultSuccess)
	}
	return out, err
}

func countEntries(nav *sidebar.NavigationTree) int {
	total := 0
	var walk func(entries []sidebar.ResolvedEntry)
	walk = func(entries []sidebar.ResolvedEntry) {
		for _, e := range entries {
			total++
			if e.IsGroup() {
				walk(e.Group.Entries)
			}
		}
	}
	for _, g := range nav.Groups {
		walk(g.Entries)
	}
	return total
}
