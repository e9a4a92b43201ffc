package ports

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissionNotFound = errors.New("mission not found")
	ErrMissingField    = errors.New("mission is missing a required field")
)

// DTO миссии
type Mission struct {
	ID          int64
	Title       string
	Pups        []string
	Location    string
	Script      string
	Translation string
	IsRequested bool
	AudioReady  bool
	CreatedAt   time.Time
}

func (m *Mission) PupsString() string {
	return strings.Join(m.Pups, ",")
}

func ParsePups(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AudioBaseName is the file name (without extension) of the mission's audio asset.
func AudioBaseName(id int64) string {
	return "mission_" + strconv.FormatInt(id, 10)
}

// MissionRepo is the record store shared by the maintainer and the HTTP layer.
type MissionRepo interface {
	// Insert stores a draft (audio not ready yet) and returns it with the assigned id.
	Insert(ctx context.Context, m *Mission) (*Mission, error)
	GetByID(ctx context.Context, id int64) (*Mission, error)
	GetByTitle(ctx context.Context, title string) (*Mission, error)
	Latest(ctx context.Context) (*Mission, error)
	CountUnrequested(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error

	MarkAudioReady(ctx context.Context, id int64) error
	// DeleteDrafts removes unpublished missions created before the cutoff.
	DeleteDrafts(ctx context.Context, createdBefore time.Time) ([]int64, error)

	// Request* select a ready mission for delivery and flip is_requested atomically.
	RequestOldest(ctx context.Context) (*Mission, error)
	RequestByID(ctx context.Context, id int64) (*Mission, error)
	RequestByTitle(ctx context.Context, title string) (*Mission, error)
}
