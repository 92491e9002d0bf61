package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/Morwran/yagpt"
)

// YandexClient is a text-only provider; image description falls back to the
// caller's plain-completion path.
type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
	timeout  time.Duration
}

func NewYandex(oauthToken, folderID string, timeout time.Duration) (*YandexClient, error) {
	// Create IAM token from OAuth token
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YandexClient{
		ya:       ya,
		iamToken: resp.IamToken,
		timeout:  timeout,
	}, nil
}

func (c *YandexClient) Complete(ctx context.Context, prompt string) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []yagpt.Message{{Role: "user", Content: prompt}}
	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		return Response{}, fmt.Errorf("%w: yagpt completion: %v", ErrUnavailable, err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Response{}, fmt.Errorf("%w: yagpt returned empty response", ErrInvalidResponse)
	}
	out := Response{Content: resp.Alternatives[0].Message.Content, Model: yagpt.YaModelLite}
	out.PromptTokens = int(resp.Usage.InputTextTokens)
	out.CompletionTokens = int(resp.Usage.CompletionTokens)
	out.TotalTokens = int(resp.Usage.TotalTokens)
	return out, nil
}
