package domain

// DedupePolicy controls how repeated identifiers are accumulated.
type DedupePolicy int

const (
	// AllowDuplicates keeps every item in arrival order.
	AllowDuplicates DedupePolicy = iota
	// DropDuplicateIDs skips items whose ID was already accumulated.
	DropDuplicateIDs
)

// ParseDedupePolicy maps the config spelling to a policy.
func ParseDedupePolicy(raw string) (DedupePolicy, error) {
	switch raw {
	case "", "allow":
		return AllowDuplicates, nil
	case "drop":
		return DropDuplicateIDs, nil
	}
	return AllowDuplicates, &ValidationError{Field: "dedupe", Reason: "must be \"allow\" or \"drop\""}
}

// SearchSession is the accumulated state of one query.
// More is false once a page came back short; only a new session resets it.
type SearchSession struct {
	ID       uint64
	Query    string
	Kind     Kind
	Items    []SearchResultItem
	Offset   int
	More     bool
	Fetching bool
}

// NewSearchSession returns a fresh session positioned at offset zero.
func NewSearchSession(id uint64, query string, kind Kind) SearchSession {
	return SearchSession{
		ID:    id,
		Query: query,
		Kind:  kind,
		Items: []SearchResultItem{},
		More:  true,
	}
}

// Apply appends a page to the session and advances the cursor.
// It returns the items that were actually appended.
func (s *SearchSession) Apply(page Page, pageSize int, policy DedupePolicy) []SearchResultItem {
	appended := make([]SearchResultItem, 0, len(page.Items))
	var seen map[string]struct{}
	if policy == DropDuplicateIDs {
		seen = make(map[string]struct{}, len(s.Items)+len(page.Items))
		for _, it := range s.Items {
			seen[it.ID] = struct{}{}
		}
	}
	for _, it := range page.Items {
		if seen != nil {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
		}
		appended = append(appended, it)
	}

	s.Items = append(s.Items, appended...)
	s.Offset += page.Returned
	if page.Returned == 0 || page.Returned < pageSize {
		s.More = false
	}
	return appended
}

// Snapshot returns a copy whose Items slice does not alias the session's.
func (s SearchSession) Snapshot() SearchSession {
	out := s
	out.Items = make([]SearchResultItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
