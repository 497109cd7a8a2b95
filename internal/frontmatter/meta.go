package frontmatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SidebarMeta carries per-document navigation hints from frontmatter.
type SidebarMeta struct {
	Label  string `yaml:"label,omitempty"`
	Order  *int   `yaml:"order,omitempty"`
	Hidden bool   `yaml:"hidden,omitempty"`
}

// Meta is the typed frontmatter of a documentation page.
//
// Fields not listed here are preserved in Rest so transforms and templates
// can still see author-supplied metadata.
type Meta struct {
	Title       string         `yaml:"title,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Sidebar     SidebarMeta    `yaml:"sidebar,omitempty"`
	Draft       bool           `yaml:"draft,omitempty"`
	Rest        map[string]any `yaml:"-"`
}

// ParseMeta splits a document and decodes its frontmatter into Meta.
//
// A document without frontmatter yields a zero Meta and the full input as body.
func ParseMeta(content []byte) (Meta, []byte, error) {
	raw, body, had, _, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	if !had || len(raw) == 0 {
		return Meta{}, body, nil
	}

	var meta Meta
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("decode frontmatter: %w", err)
	}

	rest, err := ParseYAML(raw)
	if err != nil {
		return Meta{}, nil, err
	}
	delete(rest, "title")
	delete(rest, "description")
	delete(rest, "sidebar")
	delete(rest, "draft")
	meta.Rest = rest

	return meta, body, nil
}

// HasExplicitOrder reports whether the author pinned a sidebar position.
func (m Meta) HasExplicitOrder() bool {
	return m.Sidebar.Order != nil
}
