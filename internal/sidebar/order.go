package sidebar

import (
	"sort"

	"github.com/maruel/natural"

	"git.home.luguber.info/inful/sitenav/internal/content"
)

// orderDocuments sorts autogenerated candidates in place.
//
// Documents carrying an explicit frontmatter sidebar order come first, sorted
// by that order (ties broken by path). The remainder follow in path order,
// lexical by default or natural when the group opts in.
func orderDocuments(docs []*content.Document, mode Sort) {
	less := lexicalLess
	if mode == SortNatural {
		less = natural.Less
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		aOrdered, bOrdered := a.Meta.HasExplicitOrder(), b.Meta.HasExplicitOrder()

		switch {
		case aOrdered && bOrdered:
			if *a.Meta.Sidebar.Order != *b.Meta.Sidebar.Order {
				return *a.Meta.Sidebar.Order < *b.Meta.Sidebar.Order
			}
			return less(a.RelativePath, b.RelativePath)
		case aOrdered:
			return true
		case bOrdered:
			return false
		default:
			return less(a.RelativePath, b.RelativePath)
		}
	})
}

func lexicalLess(a, b string) bool { return a < b }
