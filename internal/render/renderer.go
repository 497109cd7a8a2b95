// Package render writes the static HTML site: one page per document, the
// resolved navigation on every page, and copied assets. Output is built in a
// staging directory and promoted atomically.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitenav/internal/config"
	"git.home.luguber.info/inful/sitenav/internal/content"
	"git.home.luguber.info/inful/sitenav/internal/logfields"
	"git.home.luguber.info/inful/sitenav/internal/markdown"
	"git.home.luguber.info/inful/sitenav/internal/sidebar"
)

//go:embed templates
var templateFS embed.FS

// Result summarizes a render pass.
type Result struct {
	PagesRendered int
	AssetsCopied  int
}

// Renderer renders a content tree plus navigation into the output directory.
type Renderer struct {
	cfg       *config.Config
	outputDir string
	stageDir  string
	page      *template.Template
}

// NewRenderer creates a renderer for the given output directory.
func NewRenderer(cfg *config.Config, outputDir string) (*Renderer, error) {
	r := &Renderer{cfg: cfg, outputDir: outputDir}

	tpl, err := template.New("page.html.tmpl").
		Funcs(template.FuncMap{
			"slugURL":  r.slugURL,
			"assetURL": r.assetURL,
		}).
		ParseFS(templateFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	r.page = tpl
	return r, nil
}

type pageData struct {
	SiteTitle   string
	Title       string
	Description string
	Body        template.HTML
	Nav         *sidebar.NavigationTree
	Slug        string
}

// Render writes all pages and assets into staging and promotes it.
func (r *Renderer) Render(tree *content.Tree, nav *sidebar.NavigationTree) (Result, error) {
	var res Result

	if err := r.beginStaging(); err != nil {
		return res, err
	}

	for _, doc := range tree.Documents() {
		if doc.Meta.Draft {
			slog.Debug("Skipping draft document", logfields.Slug(doc.Slug))
			continue
		}
		if err := r.renderPage(doc, nav); err != nil {
			r.abortStaging()
			return res, err
		}
		res.PagesRendered++
	}

	for _, asset := range tree.Assets() {
		if err := r.copyAsset(asset); err != nil {
			r.abortStaging()
			return res, err
		}
		res.AssetsCopied++
	}

	if err := r.writeStylesheet(); err != nil {
		r.abortStaging()
		return res, err
	}

	if err := r.finalizeStaging(); err != nil {
		r.abortStaging()
		return res, err
	}

	slog.Info("Site rendered",
		logfields.Path(r.outputDir),
		slog.Int("pages", res.PagesRendered),
		slog.Int("assets", res.AssetsCopied))
	return res, nil
}

func (r *Renderer) renderPage(doc *content.Document, nav *sidebar.NavigationTree) error {
	body, err := markdown.Render(doc.Body)
	if err != nil {
		return fmt.Errorf("render %s: %w", doc.RelativePath, err)
	}

	outPath := filepath.Join(r.stageDir, filepath.FromSlash(PagePath(doc.Slug)))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create page directory: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data := pageData{
		SiteTitle:   r.cfg.Site.Title,
		Title:       doc.Title,
		Description: doc.Meta.Description,
		Body:        template.HTML(body), // #nosec G203 -- author-supplied markdown is trusted content
		Nav:         nav,
		Slug:        doc.Slug,
	}
	if err := r.page.Execute(f, data); err != nil {
		return fmt.Errorf("execute page template for %s: %w", doc.Slug, err)
	}

	slog.Debug("Rendered page", logfields.Slug(doc.Slug), logfields.Path(outPath))
	return nil
}

func (r *Renderer) copyAsset(asset *content.Document) error {
	dst := filepath.Join(r.stageDir, filepath.FromSlash(asset.RelativePath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	src, err := os.Open(asset.Path)
	if err != nil {
		return fmt.Errorf("open asset %s: %w", asset.RelativePath, err)
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create asset %s: %w", asset.RelativePath, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("copy asset %s: %w", asset.RelativePath, err)
	}
	return nil
}

func (r *Renderer) writeStylesheet() error {
	css, err := templateFS.ReadFile("templates/style.css")
	if err != nil {
		return fmt.Errorf("read embedded stylesheet: %w", err)
	}
	return os.WriteFile(filepath.Join(r.stageDir, "style.css"), css, 0o644)
}

// PagePath maps a slug to its pretty-URL output file:
// "" -> index.html, "guides/example" -> guides/example/index.html.
func PagePath(slug string) string {
	if slug == "" {
		return "index.html"
	}
	return slug + "/index.html"
}

func (r *Renderer) slugURL(slug string) string {
	base := strings.TrimSuffix(r.cfg.Site.BaseURL, "/")
	if slug == "" {
		return base + "/"
	}
	return base + "/" + slug + "/"
}

func (r *Renderer) assetURL(rel string) string {
	base := strings.TrimSuffix(r.cfg.Site.BaseURL, "/")
	return base + "/" + strings.TrimPrefix(rel, "/")
}

// beginStaging creates an isolated staging directory for atomic build output.
func (r *Renderer) beginStaging() error {
	// Sibling staging dir: <output>_stage (not inside output).
	stage := r.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("clear stale staging: %w", err)
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return err
	}
	r.stageDir = stage
	slog.Debug("Initialized staging directory", "staging", stage, "final", r.outputDir)
	return nil
}

// finalizeStaging atomically promotes the staging directory to the final
// output location: the previous output is moved aside, staging renamed in,
// and the backup removed asynchronously best-effort.
func (r *Renderer) finalizeStaging() error {
	if r.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}

	prev := r.outputDir + ".prev"
	if _, err := os.Stat(prev); err == nil {
		for i := 0; i < 3; i++ {
			if err := os.RemoveAll(prev); err == nil {
				break
			}
			if i < 2 {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}
	if _, err := os.Stat(r.outputDir); err == nil {
		if err := os.Rename(r.outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(r.stageDir, r.outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	r.stageDir = ""
	go func(p string) {
		if err := os.RemoveAll(p); err != nil {
			slog.Warn("Failed to remove previous backup", logfields.Path(p), "error", err)
		}
	}(prev)
	slog.Debug("Promoted staging directory", "output", r.outputDir)
	return nil
}

// abortStaging removes any existing staging directory after a failed build to
// avoid orphaned temp dirs.
func (r *Renderer) abortStaging() {
	if r.stageDir == "" {
		return
	}
	dir := r.stageDir
	r.stageDir = "" // prevent double cleanup
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", "staging", dir, "error", err)
	}
}
