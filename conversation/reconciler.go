package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyMessage is returned when a send carries no text.
	ErrEmptyMessage = errors.New("message cannot be empty")
	// ErrNoActiveConversation is returned when an operation needs an active
	// conversation and none is selected.
	ErrNoActiveConversation = errors.New("no active conversation")
	// ErrNotDeletable is returned when deleting a conversation the backend
	// has no record of. It is raised before any network call.
	ErrNotDeletable = errors.New("conversation has not been saved and cannot be deleted")
	// ErrConversationDeleted is recorded on a send whose conversation was
	// deleted while the round trip was in flight; the reply is dropped.
	ErrConversationDeleted = errors.New("conversation deleted while send was in flight")
)

// SendReply is the backend's answer to a send. ConversationID is set only
// when the backend has just minted a durable identifier for the
// conversation (first message of a new conversation).
type SendReply struct {
	Text           string
	ConversationID string
}

// Backend is the remote collaborator consumed by the engine. The engine
// passes an empty conversationID when the active conversation is
// provisional; implementations never see a provisional identifier.
type Backend interface {
	SendMessage(ctx context.Context, text, conversationID string) (SendReply, error)
	FetchHistory(ctx context.Context) ([]*Conversation, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

// State of an in-flight operation.
type State int

const (
	StateIdle State = iota
	StateOptimistic
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOptimistic:
		return "optimistic"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SendOperation tracks a single send through its optimistic cycle. The
// dispatch-time identifier and the conversation reference are captured at
// Begin time; completions arriving after an identifier upgrade or a deletion
// are resolved against them.
type SendOperation struct {
	Text  string
	State State

	conversation *Conversation
	dispatchID   string
	remoteRef    string // reference sent to the backend; empty when provisional

	reply SendReply
	err   error
}

// Err returns the failure recorded on this operation, if any.
func (op *SendOperation) Err() error {
	return op.err
}

// Reply returns the backend reply recorded by DispatchSend.
func (op *SendOperation) Reply() SendReply {
	return op.reply
}

// DeleteOperation tracks a single delete. Deletion is commit-on-confirm:
// local state is untouched until the backend acknowledges.
type DeleteOperation struct {
	State State

	id  string
	err error
}

// ID returns the durable identifier being deleted.
func (op *DeleteOperation) ID() string {
	return op.id
}

// Err returns the failure recorded on this operation, if any.
func (op *DeleteOperation) Err() error {
	return op.err
}

// Engine reconciles local optimistic state with backend-confirmed state.
//
// Begin and Resolve methods mutate the store and selection and must run on
// the UI goroutine. Dispatch methods perform the backend round trip only,
// mutate no local state, and may run on a worker goroutine.
type Engine struct {
	backend   Backend
	store     *Store
	selection *Selection
	composing int
}

// NewEngine returns an engine over the given store and selection.
func NewEngine(backend Backend, store *Store, selection *Selection) *Engine {
	return &Engine{
		backend:   backend,
		store:     store,
		selection: selection,
	}
}

// Composing reports whether any send is awaiting its reply.
func (e *Engine) Composing() bool {
	return e.composing > 0
}

// LoadHistory installs the backend's conversations in their given order and
// selects the first one. With no history (or after a failed fetch, by
// passing nil) a fresh provisional conversation is synthesized so the user
// is never shown an empty screen.
func (e *Engine) LoadHistory(conversations []*Conversation) {
	for i := len(conversations) - 1; i >= 0; i-- {
		_ = e.store.InsertAtFront(conversations[i])
	}
	if first := e.store.First(); first != nil {
		e.selection.Select(first.ID)
		return
	}
	e.StartConversation()
}

// StartConversation synthesizes a new provisional conversation, inserts it
// at the front of the store and selects it.
func (e *Engine) StartConversation() *Conversation {
	c := New(fmt.Sprintf("New Chat %d", e.store.Len()+1))
	// Identifiers are uuid-minted; duplicates cannot occur.
	_ = e.store.InsertAtFront(c)
	e.selection.Select(c.ID)
	return c
}

// BeginSend appends the optimistic user message to the active conversation
// and raises the composing flag (Idle → Optimistic). The returned operation
// carries everything DispatchSend and ResolveSend need.
func (e *Engine) BeginSend(text string) (*SendOperation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	active, ok := e.selection.Active()
	if !ok {
		return nil, ErrNoActiveConversation
	}

	active.Messages = append(active.Messages, NewUserMessage(text))
	e.store.Replace(active.ID, active)

	op := &SendOperation{
		Text:         text,
		State:        StateOptimistic,
		conversation: active,
		dispatchID:   active.ID,
	}
	if IsDurable(active.ID) {
		op.remoteRef = active.ID
	}
	e.composing++
	return op, nil
}

// DispatchSend performs the backend round trip for op, recording the reply
// or the failure on the operation. No local state is touched.
func (e *Engine) DispatchSend(ctx context.Context, op *SendOperation) {
	op.reply, op.err = e.backend.SendMessage(ctx, op.Text, op.remoteRef)
}

// ResolveSend commits or fails op (Optimistic → Committed/Failed). The
// composing flag is cleared on every path. On failure the optimistic user
// message stays visible and no assistant message is appended. On success
// the assistant reply is appended and, when the backend minted a durable
// identifier for a still-provisional conversation, the identifier is
// upgraded in the same store slot.
func (e *Engine) ResolveSend(op *SendOperation) error {
	e.composing--

	if op.err != nil {
		op.State = StateFailed
		return op.err
	}

	// Locate the conversation's slot. The dispatch-time identifier may have
	// been upgraded by an earlier completion; rematch by reference before
	// giving up. A missing reference means the conversation was deleted
	// while the send was in flight — the reply must not resurrect it.
	key := op.dispatchID
	if _, ok := e.store.Get(key); !ok {
		current, ok := e.store.FindByRef(op.conversation)
		if !ok {
			op.State = StateFailed
			op.err = ErrConversationDeleted
			return op.err
		}
		key = current
	}

	conv := op.conversation
	conv.Messages = append(conv.Messages, NewAssistantMessage(op.reply.Text))
	e.store.Replace(key, conv)

	// One-time provisional→durable upgrade. A second completion for the
	// same conversation finds it already durable and skips the upgrade.
	// Nothing observes the store between the replace and the selection fix:
	// all of this runs on the UI goroutine.
	if op.reply.ConversationID != "" && Classify(conv.ID) == Provisional {
		previous := conv.ID
		conv.ID = op.reply.ConversationID
		if e.selection.Current() == previous {
			e.selection.Select(conv.ID)
		}
	}

	op.State = StateCommitted
	return nil
}

// BeginDelete validates that the active conversation can be deleted
// server-side. Provisional conversations have no backend record and are
// rejected with ErrNotDeletable before any network call.
func (e *Engine) BeginDelete() (*DeleteOperation, error) {
	active, ok := e.selection.Active()
	if !ok {
		return nil, ErrNoActiveConversation
	}
	if !IsDurable(active.ID) {
		return nil, ErrNotDeletable
	}
	return &DeleteOperation{
		State: StateOptimistic,
		id:    active.ID,
	}, nil
}

// DispatchDelete performs the backend round trip for op. No local state is
// touched: deletion is commit-on-confirm.
func (e *Engine) DispatchDelete(ctx context.Context, op *DeleteOperation) {
	op.err = e.backend.DeleteConversation(ctx, op.id)
}

// ResolveDelete commits or fails op. Only on backend success is the entry
// removed; the selection is then revalidated. On failure the store is left
// untouched.
func (e *Engine) ResolveDelete(op *DeleteOperation) error {
	if op.err != nil {
		op.State = StateFailed
		return op.err
	}
	e.store.Remove(op.id)
	op.State = StateCommitted
	e.reconcileSelection()
	return nil
}

// DiscardActive drops a provisional active conversation client-side. It is
// the local counterpart of deletion for conversations the backend has never
// seen. Durable conversations are refused; they must go through the delete
// protocol.
func (e *Engine) DiscardActive() error {
	active, ok := e.selection.Active()
	if !ok {
		return ErrNoActiveConversation
	}
	if IsDurable(active.ID) {
		return errors.Errorf("conversation %s is saved server-side", active.ID)
	}
	e.store.Remove(active.ID)
	e.reconcileSelection()
	return nil
}

// reconcileSelection enforces the selection invariant after a store
// mutation: the selection must reference an existing entry, or — when the
// store has emptied — a fresh provisional conversation is synthesized and
// selected.
func (e *Engine) reconcileSelection() {
	if _, ok := e.selection.Active(); ok {
		return
	}
	if first := e.store.First(); first != nil {
		e.selection.Select(first.ID)
		return
	}
	e.StartConversation()
}
