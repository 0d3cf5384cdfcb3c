package render

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"storyreel/internal/media/ffprobe"
)

// commandRunner executes an external command, returning any combined output on
// failure. Tests inject fakes to avoid depending on an ffmpeg install.
type commandRunner func(ctx context.Context, name string, args ...string) error

// probeFunc inspects a media file. Matches ffprobe.Inspect with the binary
// already bound.
type probeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func defaultProbe(binary string) probeFunc {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	}
}
