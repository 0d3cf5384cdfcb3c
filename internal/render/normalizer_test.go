package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/render"
	"storyreel/internal/testsupport"
)

type capturedCommand struct {
	name string
	args []string
}

// fakeRunner records invocations and creates the output file named by the
// final argument so later stat checks behave as if ffmpeg had run.
func fakeRunner(t *testing.T, captured *[]capturedCommand) func(ctx context.Context, name string, args ...string) error {
	t.Helper()
	return func(_ context.Context, name string, args ...string) error {
		*captured = append(*captured, capturedCommand{name: name, args: args})
		if len(args) > 0 {
			output := args[len(args)-1]
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return err
			}
			return os.WriteFile(output, []byte("fake"), 0o644)
		}
		return nil
	}
}

func stubProbe(duration float64, err error) func(ctx context.Context, path string) (ffprobe.Result, error) {
	return func(context.Context, string) (ffprobe.Result, error) {
		if err != nil {
			return ffprobe.Result{}, err
		}
		result := ffprobe.Result{}
		result.Format.Duration = strconv.FormatFloat(duration, 'f', 6, 64)
		return result, nil
	}
}

func findArg(args []string, flag string) (string, bool) {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func hasArg(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}

func TestNormalizeAppliesSpeedFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	normalizer := render.NewNormalizer(cfg, logging.NewNop())

	var captured []capturedCommand
	normalizer.WithCommandRunner(fakeRunner(t, &captured))
	normalizer.WithProbe(stubProbe(10.0, nil))

	output := filepath.Join(t.TempDir(), "clip_0.mp4")
	if err := normalizer.Normalize(context.Background(), "/src/clip.mp4", output, 8.0); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("expected one ffmpeg invocation, got %d", len(captured))
	}
	args := captured[0].args

	// speedFactor = 10/8 = 1.25, setpts multiplier = 1/1.25 = 0.8
	filter, ok := findArg(args, "-vf")
	if !ok || filter != "setpts=0.800*PTS" {
		t.Fatalf("unexpected video filter: %q", filter)
	}
	if !hasArg(args, "-an") {
		t.Fatal("expected audio to be dropped")
	}
	if duration, ok := findArg(args, "-t"); !ok || duration != "8.000" {
		t.Fatalf("unexpected truncation duration: %q", duration)
	}
	if preset, _ := findArg(args, "-preset"); preset != cfg.Render.VideoPreset {
		t.Fatalf("unexpected preset: %q", preset)
	}
}

func TestNormalizeClampsSpeedFactor(t *testing.T) {
	cases := []struct {
		name       string
		native     float64
		target     float64
		wantFilter string
	}{
		// raw factor 4.0 clamps to 2.0, multiplier 0.5
		{"fast clamp", 20.0, 5.0, "setpts=0.500*PTS"},
		// raw factor 0.25 clamps to 0.5, multiplier 2.0
		{"slow clamp", 5.0, 20.0, "setpts=2.000*PTS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			normalizer := render.NewNormalizer(cfg, logging.NewNop())

			var captured []capturedCommand
			normalizer.WithCommandRunner(fakeRunner(t, &captured))
			normalizer.WithProbe(stubProbe(tc.native, nil))

			output := filepath.Join(t.TempDir(), "out.mp4")
			if err := normalizer.Normalize(context.Background(), "/src/clip.mp4", output, tc.target); err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			filter, _ := findArg(captured[0].args, "-vf")
			if filter != tc.wantFilter {
				t.Fatalf("filter = %q, want %q", filter, tc.wantFilter)
			}
		})
	}
}

func TestNormalizeRejectsNonPositiveTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	normalizer := render.NewNormalizer(cfg, logging.NewNop())
	normalizer.WithProbe(stubProbe(10.0, nil))

	err := normalizer.Normalize(context.Background(), "/src/clip.mp4", "/dst/out.mp4", 0)
	if err == nil {
		t.Fatal("expected error for zero target duration")
	}
}

func TestNormalizeProbeFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	normalizer := render.NewNormalizer(cfg, logging.NewNop())
	normalizer.WithProbe(stubProbe(0, errors.New("probe exploded")))

	err := normalizer.Normalize(context.Background(), "/src/clip.mp4", "/dst/out.mp4", 5.0)
	if err == nil {
		t.Fatal("expected probe failure to surface")
	}
}

func TestNormalizeRejectsZeroDurationClip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	normalizer := render.NewNormalizer(cfg, logging.NewNop())
	normalizer.WithProbe(stubProbe(0, nil))

	err := normalizer.Normalize(context.Background(), "/src/clip.mp4", "/dst/out.mp4", 5.0)
	if err == nil {
		t.Fatal("expected error for clip with no measurable duration")
	}
}
