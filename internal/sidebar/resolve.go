package sidebar

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sitenav/internal/content"
	"git.home.luguber.info/inful/sitenav/internal/logfields"
)

// NavigationTree is the resolved, render-ready navigation.
type NavigationTree struct {
	Groups []ResolvedGroup
}

// ResolvedGroup is one rendered navigation group.
type ResolvedGroup struct {
	Label     string
	Collapsed bool
	Entries   []ResolvedEntry
}

// ResolvedEntry is a leaf link or a nested group. Exactly one of Slug-bearing
// leaf state or Group is populated.
type ResolvedEntry struct {
	Label string
	Slug  string
	Group *ResolvedGroup
}

// IsGroup reports whether the entry is a nested group.
func (e ResolvedEntry) IsGroup() bool { return e.Group != nil }

// Resolve transforms the sidebar specification into a navigation tree against
// the given content tree.
//
// The transform is a pure, synchronous, single pass: explicit items are
// emitted in specification order unchanged; autogenerate directives enumerate
// the documents under their directory. An autogenerate directory that does
// not exist yields an empty group and a warning. An explicit item whose slug
// matches no document, or matches a draft that will not be rendered, fails
// resolution with ErrBrokenReference.
func Resolve(spec *Spec, tree *content.Tree) (*NavigationTree, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	nav := &NavigationTree{Groups: make([]ResolvedGroup, 0, len(spec.Groups))}
	for i := range spec.Groups {
		rg, err := resolveGroup(&spec.Groups[i], tree)
		if err != nil {
			return nil, err
		}
		nav.Groups = append(nav.Groups, *rg)
	}
	return nav, nil
}

func resolveGroup(g *Group, tree *content.Tree) (*ResolvedGroup, error) {
	rg := &ResolvedGroup{Label: g.Label, Collapsed: g.Collapsed}

	seen := make(map[string]struct{})
	for i := range g.Items {
		n := &g.Items[i]
		switch {
		case n.Item != nil:
			slugVal := strings.Trim(n.Item.Slug, "/")
			doc, ok := tree.Lookup(slugVal)
			if !ok {
				return nil, fmt.Errorf("%w: group %q item %q -> %q",
					ErrBrokenReference, g.Label, n.Item.Label, n.Item.Slug)
			}
			// Drafts are not rendered; linking one would publish a dead link.
			if doc.Meta.Draft {
				return nil, fmt.Errorf("%w: group %q item %q -> %q is a draft",
					ErrBrokenReference, g.Label, n.Item.Label, n.Item.Slug)
			}
			rg.Entries = append(rg.Entries, ResolvedEntry{Label: n.Item.Label, Slug: slugVal})
			seen[slugVal] = struct{}{}
		case n.Group != nil:
			nested, err := resolveGroup(n.Group, tree)
			if err != nil {
				return nil, err
			}
			rg.Entries = append(rg.Entries, ResolvedEntry{Label: nested.Label, Group: nested})
		}
	}

	if g.Autogenerate != nil {
		entries, err := autogenerateEntries(g, tree, seen)
		if err != nil {
			return nil, err
		}
		rg.Entries = append(rg.Entries, entries...)
	}

	return rg, nil
}

// autogenerateEntries enumerates the documents under the directive's
// directory. Slugs already listed explicitly in the same group are skipped.
func autogenerateEntries(g *Group, tree *content.Tree, seen map[string]struct{}) ([]ResolvedEntry, error) {
	dir := strings.Trim(g.Autogenerate.Directory, "/")
	if !tree.HasDirectory(dir) {
		// Soft failure: the group renders empty rather than breaking the
		// whole site over a missing folder.
		slog.Warn("Autogenerate directory not found, group renders empty",
			logfields.Group(g.Label),
			logfields.Directory(dir))
		return nil, nil
	}

	docs := tree.DocumentsUnder(dir)

	candidates := make([]*content.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Meta.Draft || doc.Meta.Sidebar.Hidden {
			slog.Debug("Skipping hidden document in autogeneration",
				logfields.Group(g.Label), logfields.Slug(doc.Slug))
			continue
		}
		if _, dup := seen[doc.Slug]; dup {
			continue
		}
		candidates = append(candidates, doc)
	}

	orderDocuments(candidates, g.Sort)

	entries := make([]ResolvedEntry, 0, len(candidates))
	for _, doc := range candidates {
		entries = append(entries, ResolvedEntry{Label: entryLabel(doc), Slug: doc.Slug})
	}
	return entries, nil
}

func entryLabel(doc *content.Document) string {
	if doc.Meta.Sidebar.Label != "" {
		return doc.Meta.Sidebar.Label
	}
	if doc.Title != "" {
		return doc.Title
	}
	return content.FallbackLabel(doc.Name)
}
