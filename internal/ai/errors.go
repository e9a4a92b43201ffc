package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrMalformedReply    = errors.New("malformed model reply")
	ErrAttemptsExhausted = errors.New("generation attempts exhausted")
)

// IsTransient reports whether a remote call failure is expected to clear up
// on its own: timeouts, rate limits, server errors and dropped connections.
// Other failures are retried too but logged as errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return transientStatus(reqErr.HTTPStatusCode)
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, ErrEmptyChoices) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

func transientStatus(code int) bool {
	switch {
	case code == 0:
		return true
	case code == http.StatusRequestTimeout,
		code == http.StatusConflict,
		code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	}
	return false
}
