package session

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/nextunitech/madhav/api"
	"github.com/nextunitech/madhav/cli/chat/styles"
	"github.com/nextunitech/madhav/cli/chat/types"
	"github.com/nextunitech/madhav/conversation"
	"github.com/nextunitech/madhav/internal/debug"
	"github.com/nextunitech/madhav/internal/history"
	"github.com/nextunitech/madhav/internal/markdown"
)

var log = debug.GetLogger()

// Model represents the Bubble Tea model for the chat session.
type Model struct {
	// Core dependencies
	ctx    context.Context
	client *api.Client

	// Conversation state. The engine owns all store and selection
	// mutations; Update only ever calls into it from the event loop.
	store     *conversation.Store
	selection *conversation.Selection
	engine    *conversation.Engine
	opts      types.ChatOptions

	// Tracks the line offset of each message of the active conversation
	// in the viewport.
	messageViewportOffsets []int

	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer

	// UI state
	width         int
	height        int
	ready         bool
	loading       bool
	err           error
	quitting      bool
	authFailed    bool
	windowFocused bool

	// Alert notifications.
	alert bubbleup.AlertModel

	// Input history
	history           *history.History
	historyNavigating bool

	// Index of the message we're currently navigating. (-1 if none is selected).
	navigationMessageIndex int
}

// New creates a new chat session model. The store starts empty; history is
// fetched once the session cookie has been validated.
func New(
	ctx context.Context,
	client *api.Client,
	opts types.ChatOptions,
) (*Model, error) {
	// Create textarea for input
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Ctrl+J to send, Ctrl+N for new chat, Alt+P/N for history, Ctrl+C to quit)"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = ""

	// Create spinner
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	alert := bubbleup.NewAlertModel(25, true, 1)

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}

	store := conversation.NewStore()
	selection := conversation.NewSelection(store)
	engine := conversation.NewEngine(client, store, selection)

	return &Model{
		ctx:                    ctx,
		client:                 client,
		store:                  store,
		selection:              selection,
		engine:                 engine,
		opts:                   opts,
		windowFocused:          true,
		loading:                true,
		textarea:               ta,
		spinner:                sp,
		history:                history.NewHistory(),
		renderer:               renderer,
		alert:                  *alert,
		navigationMessageIndex: -1,
	}, nil
}

// AuthFailed reports whether the session ended because the persisted
// session cookie was missing or rejected.
func (m *Model) AuthFailed() bool {
	return m.authFailed
}

// Err returns the fatal error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.alert.Init(),
		m.checkSession(),
	)
}

// activeMessages returns the messages of the active conversation.
func (m *Model) activeMessages() []*conversation.Message {
	active, ok := m.selection.Active()
	if !ok {
		return nil
	}
	return active.Messages
}
