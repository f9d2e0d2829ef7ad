package conversation

import (
	"github.com/pkg/errors"
)

// ErrDuplicateIdentifier is returned when an insert would break identifier
// uniqueness. Identifiers are uuid-minted, so hitting this is a bug.
var ErrDuplicateIdentifier = errors.New("conversation identifier already present")

// Store is an ordered collection of conversations; order is display order.
// Identifiers are unique within the store at all times, and every operation
// preserves the relative order of untouched entries.
//
// The store is owned by the UI goroutine and is not safe for concurrent use.
type Store struct {
	conversations []*Conversation
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// InsertAtFront adds a conversation as the first entry.
func (s *Store) InsertAtFront(c *Conversation) error {
	if s.indexOf(c.ID) >= 0 {
		return ErrDuplicateIdentifier
	}
	s.conversations = append([]*Conversation{c}, s.conversations...)
	return nil
}

// Replace swaps the entry matching oldID for updated, in the same position.
// It reports false, leaving the store untouched, when oldID is absent — a
// legitimate outcome when the conversation was deleted while a send was in
// flight.
func (s *Store) Replace(oldID string, updated *Conversation) bool {
	i := s.indexOf(oldID)
	if i < 0 {
		return false
	}
	s.conversations[i] = updated
	return true
}

// Remove deletes the entry matching id. Removing an absent identifier is a
// no-op, so Remove is idempotent.
func (s *Store) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
	return true
}

// Get returns the conversation matching id.
func (s *Store) Get(id string) (*Conversation, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.conversations[i], true
}

// FindByRef returns the current identifier of c, located by pointer
// identity. It is used to rematch an in-flight operation whose dispatch-time
// identifier has since been upgraded.
func (s *Store) FindByRef(c *Conversation) (string, bool) {
	for _, entry := range s.conversations {
		if entry == c {
			return entry.ID, true
		}
	}
	return "", false
}

// First returns the first entry, or nil when the store is empty.
func (s *Store) First() *Conversation {
	if len(s.conversations) == 0 {
		return nil
	}
	return s.conversations[0]
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	return len(s.conversations)
}

// Conversations returns the entries in display order. The returned slice is
// a copy; the conversations themselves are shared.
func (s *Store) Conversations() []*Conversation {
	out := make([]*Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

func (s *Store) indexOf(id string) int {
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}
