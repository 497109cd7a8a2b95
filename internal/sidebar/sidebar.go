// Package sidebar implements the navigation configuration model: a
// declarative sidebar specification resolved against the scanned content tree
// into an ordered navigation tree.
package sidebar

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Sort selects the ordering convention for autogenerated entries without an
// explicit frontmatter order.
type Sort string

const (
	SortLexical Sort = "lexical" // byte-wise path order (default)
	SortNatural Sort = "natural" // natural number-aware order
)

// Item is a named pointer into the content tree.
type Item struct {
	Label string `yaml:"label"`
	Slug  string `yaml:"slug"`
}

// Autogenerate directs a group to derive its entries from a content
// subdirectory instead of listing them explicitly.
type Autogenerate struct {
	Directory string `yaml:"directory"`
}

// Group is one navigation group. Items and Autogenerate are both permitted;
// explicit items resolve first, autogenerated entries are appended.
type Group struct {
	Label        string        `yaml:"label"`
	Items        []Node        `yaml:"items,omitempty"`
	Autogenerate *Autogenerate `yaml:"autogenerate,omitempty"`
	Collapsed    bool          `yaml:"collapsed,omitempty"`
	Sort         Sort          `yaml:"sort,omitempty"`
}

// Node is a sidebar entry that is either an Item or a nested Group,
// exactly one of which is set.
type Node struct {
	Item  *Item
	Group *Group
}

// Spec is the full sidebar specification: an ordered list of groups.
// It is constructed once at configuration load time and never mutated.
type Spec struct {
	Groups []Group
}

// UnmarshalYAML decides between an item and a nested group by shape: mappings
// carrying `slug` are items, mappings carrying `items` or `autogenerate` are
// groups.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("sidebar entry must be a mapping (line %d)", value.Line)
	}

	var probe struct {
		Slug         string        `yaml:"slug"`
		Items        []yaml.Node   `yaml:"items"`
		Autogenerate *Autogenerate `yaml:"autogenerate"`
	}
	if err := value.Decode(&probe); err != nil {
		return err
	}

	isGroup := probe.Items != nil || probe.Autogenerate != nil
	if isGroup && probe.Slug != "" {
		return fmt.Errorf("sidebar entry cannot be both item and group (line %d)", value.Line)
	}

	if isGroup {
		var g Group
		if err := value.Decode(&g); err != nil {
			return err
		}
		n.Group = &g
		return nil
	}

	var it Item
	if err := value.Decode(&it); err != nil {
		return err
	}
	n.Item = &it
	return nil
}

// MarshalYAML emits the underlying item or group.
func (n Node) MarshalYAML() (any, error) {
	switch {
	case n.Item != nil:
		return n.Item, nil
	case n.Group != nil:
		return n.Group, nil
	default:
		return nil, errors.New("empty sidebar entry")
	}
}

// UnmarshalYAML accepts the spec as a plain YAML sequence of groups.
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	var groups []Group
	if err := value.Decode(&groups); err != nil {
		return err
	}
	s.Groups = groups
	return nil
}

// MarshalYAML emits the spec as a sequence of groups.
func (s Spec) MarshalYAML() (any, error) {
	return s.Groups, nil
}

// Validate checks the structural invariants of the specification:
// non-empty group labels, label uniqueness within the sidebar, and a
// directory on every autogenerate directive.
func (s *Spec) Validate() error {
	seen := make(map[string]struct{}, len(s.Groups))
	for i := range s.Groups {
		g := &s.Groups[i]
		if g.Label == "" {
			return fmt.Errorf("sidebar group %d: %w", i, ErrEmptyGroupLabel)
		}
		if _, dup := seen[g.Label]; dup {
			return fmt.Errorf("sidebar group %q: %w", g.Label, ErrDuplicateGroupLabel)
		}
		seen[g.Label] = struct{}{}
		if err := validateGroup(g); err != nil {
			return err
		}
	}
	return nil
}

func validateGroup(g *Group) error {
	if g.Autogenerate != nil && g.Autogenerate.Directory == "" {
		return fmt.Errorf("sidebar group %q: %w", g.Label, ErrMissingDirectory)
	}
	switch g.Sort {
	case "", SortLexical, SortNatural:
	default:
		return fmt.Errorf("sidebar group %q: unknown sort %q", g.Label, g.Sort)
	}
	for i := range g.Items {
		n := &g.Items[i]
		switch {
		case n.Item != nil:
			if n.Item.Label == "" {
				return fmt.Errorf("sidebar group %q item %d: %w", g.Label, i, ErrEmptyItemLabel)
			}
		case n.Group != nil:
			if n.Group.Label == "" {
				return fmt.Errorf("sidebar group %q entry %d: %w", g.Label, i, ErrEmptyGroupLabel)
			}
			if err := validateGroup(n.Group); err != nil {
				return err
			}
		default:
			return fmt.Errorf("sidebar group %q entry %d is empty", g.Label, i)
		}
	}
	return nil
}
