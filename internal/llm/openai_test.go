package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestClassifyOpenAIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "rate limited",
			err:  &openai.APIError{HTTPStatusCode: 429, Message: "slow down"},
			want: ErrRateLimited,
		},
		{
			name: "server error",
			err:  &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"},
			want: ErrUnavailable,
		},
		{
			name: "client error",
			err:  &openai.APIError{HTTPStatusCode: 400, Message: "bad request"},
			want: ErrInvalidResponse,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("request failed: %w", &openai.APIError{HTTPStatusCode: 429}),
			want: ErrRateLimited,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: ErrUnavailable,
		},
		{
			name: "plain transport error",
			err:  errors.New("connection refused"),
			want: ErrUnavailable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyOpenAIError(tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("classifyOpenAIError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
