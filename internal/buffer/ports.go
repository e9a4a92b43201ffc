package buffer

import (
	"context"

	"github.com/Vovarama1992/mission_tower/internal/ports"
)

type Generator interface {
	Generate(ctx context.Context, prev *ports.Mission) (*ports.Mission, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, baseName, text string) error
	WAVPath(baseName string) string
}

type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}
