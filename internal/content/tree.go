// Package content scans a documentation content directory into an immutable
// tree of documents addressable by slug.
package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitenav/internal/frontmatter"
	"git.home.luguber.info/inful/sitenav/internal/logfields"
	"git.home.luguber.info/inful/sitenav/internal/markdown"
)

// Document represents a discovered documentation page or asset.
type Document struct {
	Path         string           // Absolute path to the file
	RelativePath string           // Path relative to the content root (forward slashes)
	Slug         string           // URL slug derived from the relative path
	Name         string           // File name without extension
	Extension    string           // File extension
	Meta         frontmatter.Meta // Parsed frontmatter (zero value for assets)
	Body         []byte           // Markdown body with frontmatter removed
	Title        string           // Resolved display title
	IsAsset      bool             // True for images and other non-markdown files
}

// Tree is the scanned content directory. It is built once per build pass and
// not mutated afterwards.
type Tree struct {
	Root   string
	docs   []*Document
	assets []*Document
	bySlug map[string]*Document
}

var titleCaser = cases.Title(language.English)

// Scan walks the content root and loads every markdown document and asset.
//
// Documents are ordered by relative path. Hidden files and unknown file types
// are skipped.
func Scan(root string) (*Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	if st, err := os.Stat(absRoot); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("content directory not found: %s", absRoot)
	}

	tree := &Tree{
		Root:   absRoot,
		bySlug: make(map[string]*Document),
	}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		isMarkdown := isMarkdownFile(path)
		isAssetFile := isAsset(path)
		if !isMarkdown && !isAssetFile {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		doc := &Document{
			Path:         path,
			RelativePath: relPath,
			Name:         strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
			Extension:    filepath.Ext(info.Name()),
			IsAsset:      isAssetFile,
		}

		if isAssetFile {
			doc.Slug = relPath
			tree.assets = append(tree.assets, doc)
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document %s: %w", relPath, err)
		}
		meta, body, err := frontmatter.ParseMeta(raw)
		if err != nil {
			return fmt.Errorf("parse frontmatter of %s: %w", relPath, err)
		}

		doc.Meta = meta
		doc.Body = body
		doc.Slug = SlugForPath(relPath)
		doc.Title = resolveTitle(doc)

		if prev, exists := tree.bySlug[doc.Slug]; exists {
			slog.Warn("Duplicate slug, keeping first document",
				logfields.Slug(doc.Slug),
				logfields.File(relPath),
				slog.String("kept", prev.RelativePath))
			return nil
		}

		tree.docs = append(tree.docs, doc)
		tree.bySlug[doc.Slug] = doc

		slog.Debug("Discovered document", logfields.File(relPath), logfields.Slug(doc.Slug))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content directory: %w", err)
	}

	sort.Slice(tree.docs, func(i, j int) bool {
		return tree.docs[i].RelativePath < tree.docs[j].RelativePath
	})
	sort.Slice(tree.assets, func(i, j int) bool {
		return tree.assets[i].RelativePath < tree.assets[j].RelativePath
	})

	slog.Info("Content tree scanned",
		logfields.Path(absRoot),
		slog.Int("documents", len(tree.docs)),
		slog.Int("assets", len(tree.assets)))
	return tree, nil
}

// Documents returns all markdown documents ordered by relative path.
func (t *Tree) Documents() []*Document { return t.docs }

// Assets returns all non-markdown files ordered by relative path.
func (t *Tree) Assets() []*Document { return t.assets }

// Lookup finds a document by its slug.
func (t *Tree) Lookup(s string) (*Document, bool) {
	doc, ok := t.bySlug[strings.Trim(s, "/")]
	return doc, ok
}

// HasDirectory reports whether dir exists under the content root.
func (t *Tree) HasDirectory(dir string) bool {
	st, err := os.Stat(filepath.Join(t.Root, filepath.FromSlash(dir)))
	return err == nil && st.IsDir()
}

// DocumentsUnder returns the documents whose relative path is inside dir,
// ordered by relative path.
func (t *Tree) DocumentsUnder(dir string) []*Document {
	prefix := strings.Trim(filepath.ToSlash(dir), "/")
	if prefix != "" {
		prefix += "/"
	}
	var out []*Document
	for _, doc := range t.docs {
		if strings.HasPrefix(doc.RelativePath, prefix) {
			out = append(out, doc)
		}
	}
	return out
}

// SlugForPath derives a URL slug from a content-relative path.
//
// Each path segment is slugified independently; an `index` filename maps to
// its directory slug, so `guides/index.md` and `guides/example.md` become
// `guides` and `guides/example`.
func SlugForPath(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	dir, file := "", relPath
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		dir, file = relPath[:idx], relPath[idx+1:]
	}

	name := strings.TrimSuffix(file, filepath.Ext(file))
	segments := make([]string, 0, 4)
	if dir != "" {
		for _, seg := range strings.Split(dir, "/") {
			segments = append(segments, slug.Make(seg))
		}
	}
	if !strings.EqualFold(name, "index") {
		segments = append(segments, slug.Make(name))
	}
	return strings.Join(segments, "/")
}

// FallbackLabel produces a display label from a file name when no title
// metadata is available.
func FallbackLabel(name string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCaser.String(cleaned)
}

func resolveTitle(doc *Document) string {
	if doc.Meta.Title != "" {
		return doc.Meta.Title
	}
	if h1 := markdown.ExtractTitle(doc.Body); h1 != "" {
		return h1
	}
	return FallbackLabel(doc.Name)
}

// isMarkdownFile checks if a file is a markdown file
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd" || ext == ".mdx"
}

// isAsset checks if a file is an asset (image, etc.)
func isAsset(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	assetExtensions := []string{
		// Images
		".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico",
		// Documents
		".pdf",
		// Other
		".css", ".js", ".json", ".txt",
	}
	for _, assetExt := range assetExtensions {
		if ext == assetExt {
			return true
		}
	}
	return false
}
