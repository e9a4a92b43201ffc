package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	SampleRate = 44100
	Channels   = 2
	Codec      = "pcm_s16le"
)

var (
	ErrNotMP3          = errors.New("the provided file does not have an .mp3 extension")
	ErrTranscodeFailed = errors.New("audio conversion failed")
)

type FFmpegTranscoder struct {
	bin string
}

func NewFFmpegTranscoder(bin string) *FFmpegTranscoder {
	return &FFmpegTranscoder{bin: bin}
}

// ToWAV writes a 44.1kHz stereo s16le WAV next to the mp3 and returns its path.
func (t *FFmpegTranscoder) ToWAV(ctx context.Context, mp3Path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(mp3Path), ".mp3") {
		return "", fmt.Errorf("%w: %s", ErrNotMP3, filepath.Base(mp3Path))
	}

	wavPath := strings.TrimSuffix(mp3Path, filepath.Ext(mp3Path)) + ".wav"

	cmd := exec.CommandContext(ctx, t.bin, t.args(mp3Path, wavPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrTranscodeFailed, err, lastLine(out))
	}
	return wavPath, nil
}

func (t *FFmpegTranscoder) args(in, out string) []string {
	return []string{
		"-y",
		"-i", in,
		"-acodec", Codec,
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		out,
	}
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}
