package conversation

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeBackend records calls and returns scripted replies, one per send, in
// order.
type fakeBackend struct {
	replies   []SendReply
	sendErr   error
	deleteErr error

	sentTexts []string
	sentRefs  []string
	deleted   []string
}

func (f *fakeBackend) SendMessage(_ context.Context, text, conversationID string) (SendReply, error) {
	f.sentTexts = append(f.sentTexts, text)
	f.sentRefs = append(f.sentRefs, conversationID)
	if f.sendErr != nil {
		return SendReply{}, f.sendErr
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeBackend) FetchHistory(context.Context) ([]*Conversation, error) {
	return nil, nil
}

func (f *fakeBackend) DeleteConversation(_ context.Context, conversationID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, conversationID)
	return nil
}

func newTestEngine(backend *fakeBackend) (*Engine, *Store, *Selection) {
	store := NewStore()
	selection := NewSelection(store)
	return NewEngine(backend, store, selection), store, selection
}

func messageTexts(c *Conversation) []string {
	out := []string{}
	for _, m := range c.Messages {
		out = append(out, m.Text)
	}
	return out
}

func TestLoadHistory(t *testing.T) {
	t.Parallel()
	engine, store, selection := newTestEngine(&fakeBackend{})

	engine.LoadHistory([]*Conversation{
		{ID: "d-1", Title: "first"},
		{ID: "d-2", Title: "second"},
	})

	require.Equal(t, []string{"d-1", "d-2"}, storeIDs(store))
	require.Equal(t, "d-1", selection.Current())
}

func TestLoadHistoryEmptySynthesizes(t *testing.T) {
	t.Parallel()
	engine, store, selection := newTestEngine(&fakeBackend{})

	engine.LoadHistory(nil)

	require.Equal(t, 1, store.Len())
	active, ok := selection.Active()
	require.True(t, ok)
	require.Equal(t, Provisional, Classify(active.ID))
	require.Empty(t, active.Messages)
}

func TestStartConversation(t *testing.T) {
	t.Parallel()
	engine, store, selection := newTestEngine(&fakeBackend{})

	first := engine.StartConversation()
	second := engine.StartConversation()

	require.Equal(t, "New Chat 1", first.Title)
	require.Equal(t, "New Chat 2", second.Title)
	require.Equal(t, second, store.First())
	require.Equal(t, second.ID, selection.Current())
}

func TestBeginSendValidation(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(&fakeBackend{})

	_, err := engine.BeginSend("hello")
	require.ErrorIs(t, err, ErrNoActiveConversation)

	engine.StartConversation()
	_, err = engine.BeginSend("   ")
	require.ErrorIs(t, err, ErrEmptyMessage)
	require.False(t, engine.Composing())
}

func TestSendUpgradesProvisionalConversation(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{replies: []SendReply{{Text: "hi there", ConversationID: "d-1"}}}
	engine, store, selection := newTestEngine(backend)
	conv := engine.StartConversation()
	provisionalID := conv.ID

	op, err := engine.BeginSend("hello")
	require.NoError(t, err)
	require.Equal(t, StateOptimistic, op.State)
	require.True(t, engine.Composing())
	require.Equal(t, []string{"hello"}, messageTexts(conv), "user message appended before the round trip")

	engine.DispatchSend(context.Background(), op)
	require.Equal(t, []string{""}, backend.sentRefs, "provisional identifier never reaches the backend")

	require.NoError(t, engine.ResolveSend(op))
	require.Equal(t, StateCommitted, op.State)
	require.False(t, engine.Composing())

	require.Equal(t, []string{"hello", "hi there"}, messageTexts(conv))
	require.Equal(t, "d-1", conv.ID)
	require.Equal(t, []string{"d-1"}, storeIDs(store), "upgrade happens in the same store slot")
	require.Equal(t, "d-1", selection.Current(), "selection follows the upgrade")

	_, ok := store.Get(provisionalID)
	require.False(t, ok)
}

func TestSendDurableConversationKeepsIdentifier(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{replies: []SendReply{{Text: "reply"}}}
	engine, store, selection := newTestEngine(backend)
	engine.LoadHistory([]*Conversation{{ID: "d-1", Title: "existing"}})

	op, err := engine.BeginSend("hello")
	require.NoError(t, err)
	engine.DispatchSend(context.Background(), op)
	require.Equal(t, []string{"d-1"}, backend.sentRefs)

	require.NoError(t, engine.ResolveSend(op))
	require.Equal(t, "d-1", selection.Current())
	active, _ := selection.Active()
	require.Equal(t, []string{"hello", "reply"}, messageTexts(active))
	require.Equal(t, 1, store.Len())
}

func TestSendFailureKeepsOptimisticMessage(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{sendErr: errSendDown}
	engine, _, selection := newTestEngine(backend)
	conv := engine.StartConversation()
	provisionalID := conv.ID

	op, err := engine.BeginSend("hello")
	require.NoError(t, err)
	engine.DispatchSend(context.Background(), op)

	err = engine.ResolveSend(op)
	require.ErrorIs(t, err, errSendDown)
	require.Equal(t, StateFailed, op.State)
	require.False(t, engine.Composing())

	require.Equal(t, []string{"hello"}, messageTexts(conv), "optimistic message stays visible on failure")
	require.Equal(t, provisionalID, conv.ID, "no upgrade on failure")
	require.Equal(t, provisionalID, selection.Current())
}

var errSendDown = errors.New("backend unreachable")

func TestConcurrentSendsUpgradeOnce(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{replies: []SendReply{
		{Text: "first reply", ConversationID: "d-1"},
		{Text: "second reply", ConversationID: "d-9"},
	}}
	engine, store, selection := newTestEngine(backend)
	conv := engine.StartConversation()

	op1, err := engine.BeginSend("one")
	require.NoError(t, err)
	op2, err := engine.BeginSend("two")
	require.NoError(t, err)
	require.True(t, engine.Composing())

	engine.DispatchSend(context.Background(), op1)
	engine.DispatchSend(context.Background(), op2)
	require.Equal(t, []string{"", ""}, backend.sentRefs)

	require.NoError(t, engine.ResolveSend(op1))
	require.Equal(t, "d-1", conv.ID)
	require.True(t, engine.Composing(), "second send still in flight")

	// The second completion's dispatch-time identifier is stale; it is
	// rematched by reference and its late-minted identifier is discarded.
	require.NoError(t, engine.ResolveSend(op2))
	require.Equal(t, "d-1", conv.ID)
	require.Equal(t, []string{"d-1"}, storeIDs(store))
	require.Equal(t, "d-1", selection.Current())
	require.False(t, engine.Composing())

	require.Equal(t, []string{"one", "two", "first reply", "second reply"}, messageTexts(conv))
}

func TestSendResolvedAfterConversationDeleted(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{replies: []SendReply{{Text: "reply"}}}
	engine, store, selection := newTestEngine(backend)
	engine.LoadHistory([]*Conversation{{ID: "d-1"}, {ID: "d-2"}})

	op, err := engine.BeginSend("hello")
	require.NoError(t, err)
	engine.DispatchSend(context.Background(), op)

	// d-1 disappears while the send is in flight.
	store.Remove("d-1")
	selection.Select("d-2")

	err = engine.ResolveSend(op)
	require.ErrorIs(t, err, ErrConversationDeleted)
	require.Equal(t, StateFailed, op.State)
	require.Equal(t, []string{"d-2"}, storeIDs(store), "reply must not resurrect the conversation")
	require.False(t, engine.Composing())
}

func TestBeginDeleteProvisionalRefused(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	engine, _, _ := newTestEngine(backend)
	engine.StartConversation()

	_, err := engine.BeginDelete()
	require.ErrorIs(t, err, ErrNotDeletable)
	require.Empty(t, backend.deleted, "no network call for provisional conversations")
}

func TestDeleteCommitsOnConfirm(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	engine, store, selection := newTestEngine(backend)
	engine.LoadHistory([]*Conversation{{ID: "d-1"}, {ID: "d-2"}})

	op, err := engine.BeginDelete()
	require.NoError(t, err)
	require.Equal(t, "d-1", op.ID())
	require.Equal(t, 2, store.Len(), "nothing removed before the backend confirms")

	engine.DispatchDelete(context.Background(), op)
	require.NoError(t, engine.ResolveDelete(op))
	require.Equal(t, StateCommitted, op.State)
	require.Equal(t, []string{"d-1"}, backend.deleted)
	require.Equal(t, []string{"d-2"}, storeIDs(store))
	require.Equal(t, "d-2", selection.Current())
}

func TestDeleteLastConversationSynthesizesNew(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	engine, store, selection := newTestEngine(backend)
	engine.LoadHistory([]*Conversation{{ID: "d-1"}})

	op, err := engine.BeginDelete()
	require.NoError(t, err)
	engine.DispatchDelete(context.Background(), op)
	require.NoError(t, engine.ResolveDelete(op))

	require.Equal(t, 1, store.Len())
	active, ok := selection.Active()
	require.True(t, ok)
	require.Equal(t, Provisional, Classify(active.ID))
}

func TestDeleteFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{deleteErr: errSendDown}
	engine, store, selection := newTestEngine(backend)
	engine.LoadHistory([]*Conversation{{ID: "d-1"}, {ID: "d-2"}})

	op, err := engine.BeginDelete()
	require.NoError(t, err)
	engine.DispatchDelete(context.Background(), op)

	err = engine.ResolveDelete(op)
	require.ErrorIs(t, err, errSendDown)
	require.Equal(t, StateFailed, op.State)
	require.Equal(t, []string{"d-1", "d-2"}, storeIDs(store))
	require.Equal(t, "d-1", selection.Current())
}

func TestDiscardActive(t *testing.T) {
	t.Parallel()
	engine, store, selection := newTestEngine(&fakeBackend{})
	engine.LoadHistory([]*Conversation{{ID: "d-1"}})
	fresh := engine.StartConversation()

	require.NoError(t, engine.DiscardActive())
	_, ok := store.Get(fresh.ID)
	require.False(t, ok)
	require.Equal(t, "d-1", selection.Current())

	// durable conversations must go through the delete protocol
	require.Error(t, engine.DiscardActive())
	require.Equal(t, 1, store.Len())
}
