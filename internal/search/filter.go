package search

// Record is anything the filter can test: a set of free-text fields plus one
// category value used for exact filtering.
type Record interface {
	SearchFields() []string
	Category() string
}

// Filter keeps the items whose fields match q (any field is enough) and whose
// category equals category. An empty category keeps every category.
// The input order is preserved and items is never modified.
func Filter[T Record](items []T, q Query, category string) []T {
	m := Compile(q)
	out := make([]T, 0, len(items))

	for _, it := range items {
		if category != "" && it.Category() != category {
			continue
		}
		if m.all || matchAny(m, it.SearchFields()) {
			out = append(out, it)
		}
	}

	return out
}

func matchAny(m *Matcher, fields []string) bool {
	for _, f := range fields {
		if m.Match(f) {
			return true
		}
	}
	return false
}
