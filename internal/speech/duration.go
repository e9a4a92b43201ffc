package speech

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

type FFprobe struct {
	bin string
}

func NewFFprobe(bin string) *FFprobe {
	return &FFprobe{bin: bin}
}

func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}
