package domain

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/Vovarama1992/mission_tower/internal/ports"
)

type audioArchive struct {
	client ports.S3Client
	prefix string
}

func NewAudioArchive(client ports.S3Client, prefix string) ports.AudioArchive {
	return &audioArchive{client: client, prefix: prefix}
}

// ObjectKey: путь в бакете
func (a *audioArchive) ObjectKey(missionID int64) string {
	return path.Join(a.prefix, ports.AudioBaseName(missionID)+".wav")
}

func (a *audioArchive) SaveAudio(ctx context.Context, missionID int64, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat audio: %w", err)
	}

	return a.client.PutObject(ctx, a.ObjectKey(missionID), f, st.Size(), "audio/wav")
}
