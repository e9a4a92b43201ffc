package speech

import "context"

// TTSClient writes compressed speech for text to outPath.
type TTSClient interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Transcoder converts a compressed file to the playback format and returns the new path.
type Transcoder interface {
	ToWAV(ctx context.Context, mp3Path string) (string, error)
}

type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}
