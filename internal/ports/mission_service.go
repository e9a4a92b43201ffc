package ports

import "context"

type BufferStatus struct {
	Unrequested int `json:"unrequested"`
	Target      int `json:"target"`
}

// MissionService is what the HTTP layer sees of the store.
type MissionService interface {
	NextMission(ctx context.Context) (*Mission, error)
	MissionByID(ctx context.Context, id int64) (*Mission, error)
	MissionByTitle(ctx context.Context, title string) (*Mission, error)
	AudioPath(id int64) string
	BufferStatus(ctx context.Context) (BufferStatus, error)
}
