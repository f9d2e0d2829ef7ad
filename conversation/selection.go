package conversation

// Selection tracks which conversation is active. It references entries by
// identifier; the engine revalidates it after every store mutation so that
// it never points at a removed entry.
type Selection struct {
	store   *Store
	current string
}

// NewSelection returns a selection over the given store.
func NewSelection(store *Store) *Selection {
	return &Selection{store: store}
}

// Select marks id as the active conversation. Selecting an identifier that
// is not in the store is refused, leaving the previous selection in place.
func (s *Selection) Select(id string) bool {
	if _, ok := s.store.Get(id); !ok {
		return false
	}
	s.current = id
	return true
}

// Current returns the active identifier; empty when nothing is selected.
func (s *Selection) Current() string {
	return s.current
}

// Active returns the active conversation. It reports false when the
// selection no longer matches a store entry and must be revalidated.
func (s *Selection) Active() (*Conversation, bool) {
	if s.current == "" {
		return nil, false
	}
	return s.store.Get(s.current)
}
