package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Params are the per-request generation settings. They are read from the
// live configuration on every call so model changes apply without
// rebuilding the client.
type Params struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client is the boundary to a remote text-generation endpoint. A failed
// or empty completion is reported as an error, never as an empty
// Response; callers decide how to degrade.
type Client interface {
	Generate(ctx context.Context, messages []Message, p Params) (Response, error)
}
