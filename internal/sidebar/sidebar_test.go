package sidebar

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sidebarYAML = `
- label: Guides
  items:
    - label: Example Guide
      slug: guides/example
- label: Challenges
  autogenerate:
    directory: challenges
- label: Learn
  collapsed: true
  items:
    - label: Pinned
      slug: guides/example
    - label: Experiments
      sort: natural
      autogenerate:
        directory: experiments
`

func TestSpec_UnmarshalYAML_DecodesItemsGroupsAndDirectives(t *testing.T) {
	var spec Spec
	require.NoError(t, yaml.Unmarshal([]byte(sidebarYAML), &spec))
	require.Len(t, spec.Groups, 3)

	guides := spec.Groups[0]
	require.Equal(t, "Guides", guides.Label)
	require.Len(t, guides.Items, 1)
	require.NotNil(t, guides.Items[0].Item)
	require.Equal(t, "guides/example", guides.Items[0].Item.Slug)

	challenges := spec.Groups[1]
	require.NotNil(t, challenges.Autogenerate)
	require.Equal(t, "challenges", challenges.Autogenerate.Directory)

	learn := spec.Groups[2]
	require.True(t, learn.Collapsed)
	require.Len(t, learn.Items, 2)
	require.NotNil(t, learn.Items[0].Item)
	nested := learn.Items[1].Group
	require.NotNil(t, nested)
	require.Equal(t, SortNatural, nested.Sort)
	require.Equal(t, "experiments", nested.Autogenerate.Directory)
}

func TestSpec_UnmarshalYAML_RejectsAmbiguousEntry(t *testing.T) {
	bad := `
- label: Guides
  items:
    - label: Broken
      slug: guides/example
      autogenerate:
        directory: guides
`
	var spec Spec
	err := yaml.Unmarshal([]byte(bad), &spec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot be both")
}

func TestSpec_MarshalRoundTrip(t *testing.T) {
	var spec Spec
	require.NoError(t, yaml.Unmarshal([]byte(sidebarYAML), &spec))

	out, err := yaml.Marshal(spec)
	require.NoError(t, err)

	var again Spec
	require.NoError(t, yaml.Unmarshal(out, &again))
	require.Equal(t, spec, again)
}

func TestValidate_UnknownSort_Rejected(t *testing.T) {
	spec := &Spec{Groups: []Group{{
		Label:        "Guides",
		Sort:         Sort("random"),
		Autogenerate: &Autogenerate{Directory: "guides"},
	}}}
	require.Error(t, spec.Validate())
}

func TestValidate_AutogenerateWithoutDirectory_Rejected(t *testing.T) {
	spec := &Spec{Groups: []Group{{
		Label:        "Guides",
		Autogenerate: &Autogenerate{},
	}}}
	err := spec.Validate()
	require.Error(t, err)
}
