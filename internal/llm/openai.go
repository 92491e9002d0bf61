package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client      *openai.Client
	model       string
	visionModel string
	timeout     time.Duration
}

func NewOpenAI(apiKey, baseURL, model, visionModel string, timeout time.Duration) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if visionModel == "" {
		visionModel = model
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		visionModel: visionModel,
		timeout:     timeout,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	return c.create(ctx, req)
}

func (c *OpenAIClient) DescribeImage(ctx context.Context, prompt string, img Image) (Response, error) {
	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Data))
	req := openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}
	return c.create(ctx, req)
}

func (c *OpenAIClient) create(ctx context.Context, req openai.ChatCompletionRequest) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, fmt.Errorf("%w: empty completion", ErrInvalidResponse)
	}
	out := Response{
		Content: resp.Choices[0].Message.Content,
		Model:   req.Model,
	}
	out.PromptTokens = resp.Usage.PromptTokens
	out.CompletionTokens = resp.Usage.CompletionTokens
	out.TotalTokens = resp.Usage.TotalTokens
	return out, nil
}

// classifyOpenAIError maps transport and API failures onto the package
// failure classes so callers never have to inspect provider types.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		default:
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
