package llm

import "context"

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client abstracts the completion engine. Implementations issue a single
// call with a bounded timeout and no internal retry; retry policy is a
// caller decision.
type Client interface {
	Complete(ctx context.Context, prompt string) (Response, error)
}

// Image is an in-memory image payload for vision-capable providers.
type Image struct {
	MIME string
	Data []byte
}

// VisionClient is implemented by providers that can describe images.
// Callers should fall back to a plain Complete when the configured
// provider does not implement it.
type VisionClient interface {
	DescribeImage(ctx context.Context, prompt string, img Image) (Response, error)
}
