package ports

import "context"

// AudioArchive mirrors finished mission audio to object storage.
type AudioArchive interface {
	ObjectKey(missionID int64) string
	SaveAudio(ctx context.Context, missionID int64, path string) (string, error)
}
