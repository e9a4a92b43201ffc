package ai

import (
	"context"

	"github.com/Vovarama1992/mission_tower/internal/ports"
)

// ChatClient sends one session to the chat-completion API and returns the reply text.
type ChatClient interface {
	Complete(ctx context.Context, s Session) (string, error)
}

// Generator produces the data of a new mission; prev is the de-duplication
// reference and may be nil.
type Generator interface {
	Generate(ctx context.Context, prev *ports.Mission) (*ports.Mission, error)
}
