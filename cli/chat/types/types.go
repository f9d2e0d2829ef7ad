package types

// ChatOptions holds the options for the chat session.
type ChatOptions struct {
	RenderMarkdown bool
}
