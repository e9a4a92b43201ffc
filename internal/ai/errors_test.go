package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 503}, true},
		{"request timeout", &openai.RequestError{HTTPStatusCode: 408, Err: errors.New("timeout")}, true},
		{"wrapped server error", fmt.Errorf("translate: %w", &openai.APIError{HTTPStatusCode: 500}), true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, false},
		{"not found", &openai.RequestError{HTTPStatusCode: 404, Err: errors.New("no model")}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"empty choices", ErrEmptyChoices, true},
		{"net op", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"malformed", ErrMalformedReply, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}
