package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitenav/internal/config"
	"git.home.luguber.info/inful/sitenav/internal/content"
	"git.home.luguber.info/inful/sitenav/internal/sidebar"
)

func buildFixture(t *testing.T) (*content.Tree, *sidebar.NavigationTree) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.md":          "---\ntitle: Home\n---\nWelcome.\n",
		"guides/example.md": "---\ntitle: Example Guide\n---\n# Example\n\nbody\n",
		"guides/img.png":    "png-bytes",
	}
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	tree, err := content.Scan(root)
	require.NoError(t, err)

	spec := &sidebar.Spec{Groups: []sidebar.Group{{
		Label: "Guides",
		Items: []sidebar.Node{{Item: &sidebar.Item{Label: "Example Guide", Slug: "guides/example"}}},
	}}}
	nav, err := sidebar.Resolve(spec, tree)
	require.NoError(t, err)
	return tree, nav
}

func testConfig() *config.Config {
	return &config.Config{Site: config.SiteConfig{Title: "Test Docs"}}
}

func TestRender_WritesPagesAssetsAndNav(t *testing.T) {
	tree, nav := buildFixture(t)
	out := filepath.Join(t.TempDir(), "site")

	r, err := NewRenderer(testConfig(), out)
	require.NoError(t, err)

	res, err := r.Render(tree, nav)
	require.NoError(t, err)
	require.Equal(t, 2, res.PagesRendered)
	require.Equal(t, 1, res.AssetsCopied)

	home, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(home), "Test Docs")
	require.Contains(t, string(home), `href="/guides/example/"`)
	require.Contains(t, string(home), "Example Guide")

	page, err := os.ReadFile(filepath.Join(out, "guides", "example", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "<h1")

	_, err = os.Stat(filepath.Join(out, "guides", "img.png"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "style.css"))
	require.NoError(t, err)

	// No staging leftovers.
	_, err = os.Stat(out + "_stage")
	require.True(t, os.IsNotExist(err))
}

func TestRender_ReplacesPreviousOutputAtomically(t *testing.T) {
	tree, nav := buildFixture(t)
	out := filepath.Join(t.TempDir(), "site")

	r, err := NewRenderer(testConfig(), out)
	require.NoError(t, err)
	_, err = r.Render(tree, nav)
	require.NoError(t, err)

	// Second render over an existing output must succeed and keep content.
	_, err = r.Render(tree, nav)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "index.html"))
	require.NoError(t, err)
}

func TestPagePath(t *testing.T) {
	require.Equal(t, "index.html", PagePath(""))
	require.Equal(t, "guides/example/index.html", PagePath("guides/example"))
}
