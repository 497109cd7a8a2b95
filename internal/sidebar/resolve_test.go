package sidebar

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitenav/internal/content"
)

func scanFixture(t *testing.T, files map[string]string) *content.Tree {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	tree, err := content.Scan(root)
	require.NoError(t, err)
	return tree
}

func TestResolve_ExplicitItems_PreserveSpecificationOrder(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"guides/example.md": "---\ntitle: Example Guide\n---\nbody\n",
		"guides/second.md":  "---\ntitle: Second\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label: "Guides",
		Items: []Node{
			{Item: &Item{Label: "Second Guide", Slug: "guides/second"}},
			{Item: &Item{Label: "Example Guide", Slug: "guides/example"}},
		},
	}}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Len(t, nav.Groups, 1)
	require.Equal(t, "Guides", nav.Groups[0].Label)
	require.Len(t, nav.Groups[0].Entries, 2)
	require.Equal(t, "Second Guide", nav.Groups[0].Entries[0].Label)
	require.Equal(t, "Example Guide", nav.Groups[0].Entries[1].Label)
}

func TestResolve_BrokenExplicitReference_FailsWithDiagnostic(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"guides/example.md": "---\ntitle: Example Guide\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label: "Guides",
		Items: []Node{{Item: &Item{Label: "Gone", Slug: "guides/deleted"}}},
	}}}

	_, err := Resolve(spec, tree)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrBrokenReference))
	require.Contains(t, err.Error(), "guides/deleted")
	require.Contains(t, err.Error(), "Gone")
}

func TestResolve_ExplicitReferenceToDraft_FailsWithDiagnostic(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"guides/example.md": "---\ntitle: Example Guide\ndraft: true\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label: "Guides",
		Items: []Node{{Item: &Item{Label: "Example Guide", Slug: "guides/example"}}},
	}}}

	// Drafts are skipped by the renderer, so linking one explicitly would put
	// a dead link in every page's sidebar.
	_, err := Resolve(spec, tree)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrBrokenReference))
	require.Contains(t, err.Error(), "guides/example")
	require.Contains(t, err.Error(), "draft")
}

func TestResolve_Autogenerate_AllDocumentsWithLabels(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"challenges/alpha.md": "---\ntitle: Alpha Challenge\n---\nbody\n",
		"challenges/beta.md":  "# Beta From Heading\n\nbody\n",
		"challenges/gamma.md": "no metadata at all\n",
	})

	spec := &Spec{Groups: []Group{{
		Label:        "Challenges",
		Autogenerate: &Autogenerate{Directory: "challenges"},
	}}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Len(t, nav.Groups[0].Entries, 3)
	for _, e := range nav.Groups[0].Entries {
		require.NotEmpty(t, e.Label)
		_, ok := tree.Lookup(e.Slug)
		require.True(t, ok, "slug %q must resolve", e.Slug)
	}
	require.Equal(t, "Alpha Challenge", nav.Groups[0].Entries[0].Label)
	require.Equal(t, "Beta From Heading", nav.Groups[0].Entries[1].Label)
	require.Equal(t, "Gamma", nav.Groups[0].Entries[2].Label)
}

func TestResolve_MissingAutogenerateDirectory_EmptyGroupNoError(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"guides/example.md": "---\ntitle: Example Guide\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label:        "Experiments",
		Autogenerate: &Autogenerate{Directory: "experiments"},
	}}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Len(t, nav.Groups, 1)
	require.Empty(t, nav.Groups[0].Entries)
}

func TestResolve_FrontmatterOrder_BeforeLexical(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"ref/aaa.md": "---\ntitle: AAA\n---\nbody\n",
		"ref/bbb.md": "---\ntitle: BBB\nsidebar:\n  order: 1\n---\nbody\n",
		"ref/ccc.md": "---\ntitle: CCC\nsidebar:\n  order: 0\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label:        "Reference",
		Autogenerate: &Autogenerate{Directory: "ref"},
	}}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	labels := []string{}
	for _, e := range nav.Groups[0].Entries {
		labels = append(labels, e.Label)
	}
	require.Equal(t, []string{"CCC", "BBB", "AAA"}, labels)
}

func TestResolve_NaturalSort_OrdersNumericNames(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"steps/step-10.md": "---\ntitle: Ten\n---\nbody\n",
		"steps/step-2.md":  "---\ntitle: Two\n---\nbody\n",
	})

	lexical := &Spec{Groups: []Group{{
		Label:        "Steps",
		Autogenerate: &Autogenerate{Directory: "steps"},
	}}}
	nav, err := Resolve(lexical, tree)
	require.NoError(t, err)
	require.Equal(t, "Ten", nav.Groups[0].Entries[0].Label)

	naturalSpec := &Spec{Groups: []Group{{
		Label:        "Steps",
		Autogenerate: &Autogenerate{Directory: "steps"},
		Sort:         SortNatural,
	}}}
	nav, err = Resolve(naturalSpec, tree)
	require.NoError(t, err)
	require.Equal(t, "Two", nav.Groups[0].Entries[0].Label)
}

func TestResolve_HiddenAndDraftDocuments_Excluded(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"howto/visible.md": "---\ntitle: Visible\n---\nbody\n",
		"howto/hidden.md":  "---\ntitle: Hidden\nsidebar:\n  hidden: true\n---\nbody\n",
		"howto/draft.md":   "---\ntitle: Draft\ndraft: true\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label:        "How-Tos",
		Autogenerate: &Autogenerate{Directory: "howto"},
	}}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Len(t, nav.Groups[0].Entries, 1)
	require.Equal(t, "Visible", nav.Groups[0].Entries[0].Label)
}

func TestResolve_SameDirectoryUnderSeveralLabels_Permitted(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"reference/config.md": "---\ntitle: Configuration\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{
		{Label: "How-Tos", Autogenerate: &Autogenerate{Directory: "reference"}},
		{Label: "Explanations", Autogenerate: &Autogenerate{Directory: "reference"}},
		{Label: "Reference", Autogenerate: &Autogenerate{Directory: "reference"}},
	}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Len(t, nav.Groups, 3)
	for _, g := range nav.Groups {
		require.Len(t, g.Entries, 1)
		require.Equal(t, "Configuration", g.Entries[0].Label)
	}
}

func TestResolve_MixedItemsAndAutogenerate_ExplicitFirstDeduped(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"guides/example.md": "---\ntitle: Example Guide\n---\nbody\n",
		"guides/other.md":   "---\ntitle: Other\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label:        "Guides",
		Items:        []Node{{Item: &Item{Label: "Pinned", Slug: "guides/other"}}},
		Autogenerate: &Autogenerate{Directory: "guides"},
	}}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Len(t, nav.Groups[0].Entries, 2)
	require.Equal(t, "Pinned", nav.Groups[0].Entries[0].Label)
	require.Equal(t, "Example Guide", nav.Groups[0].Entries[1].Label)
}

func TestResolve_NestedGroups(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"guides/example.md":   "---\ntitle: Example Guide\n---\nbody\n",
		"challenges/alpha.md": "---\ntitle: Alpha\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label: "Learn",
		Items: []Node{
			{Item: &Item{Label: "Example Guide", Slug: "guides/example"}},
			{Group: &Group{
				Label:        "Challenges",
				Autogenerate: &Autogenerate{Directory: "challenges"},
				Collapsed:    true,
			}},
		},
	}}}

	nav, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Len(t, nav.Groups[0].Entries, 2)
	nested := nav.Groups[0].Entries[1]
	require.True(t, nested.IsGroup())
	require.Equal(t, "Challenges", nested.Group.Label)
	require.True(t, nested.Group.Collapsed)
	require.Len(t, nested.Group.Entries, 1)
}

func TestResolve_Idempotent(t *testing.T) {
	tree := scanFixture(t, map[string]string{
		"guides/example.md": "---\ntitle: Example Guide\n---\nbody\n",
		"guides/second.md":  "---\ntitle: Second\n---\nbody\n",
	})

	spec := &Spec{Groups: []Group{{
		Label:        "Guides",
		Autogenerate: &Autogenerate{Directory: "guides"},
	}}}

	first, err := Resolve(spec, tree)
	require.NoError(t, err)
	second, err := Resolve(spec, tree)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestValidate_DuplicateGroupLabels_Rejected(t *testing.T) {
	spec := &Spec{Groups: []Group{
		{Label: "Guides", Items: []Node{}},
		{Label: "Guides", Items: []Node{}},
	}}
	err := spec.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateGroupLabel))
}
