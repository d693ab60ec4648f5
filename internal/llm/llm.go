package llm

import (
	"context"

	"ai-kitchen/internal/shared"
)

// Image is an inline picture attached to a generation request.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is a single generation call: a system instruction, the user turn
// and optional images. JSON asks the provider to answer with a JSON object.
type Request struct {
	System string
	User   string
	Images []Image
	JSON   bool
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a request.
type TextGenerator interface {
	GenerateContent(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
