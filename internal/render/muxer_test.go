package render_test

import (
	"context"
	"strings"
	"testing"

	"storyreel/internal/logging"
	"storyreel/internal/render"
	"storyreel/internal/testsupport"
)

func TestMuxBuildsBurnInCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	muxer := render.NewMuxer(cfg, logging.NewNop())

	var captured []capturedCommand
	muxer.WithCommandRunner(fakeRunner(t, &captured))

	err := muxer.Mux(context.Background(), "/w/merged.mp4", "/w/narration.mp3", "/w/subtitles.srt", "/out/video.mp4")
	if err != nil {
		t.Fatalf("Mux failed: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("expected one ffmpeg invocation, got %d", len(captured))
	}
	args := captured[0].args

	filter, ok := findArg(args, "-vf")
	if !ok {
		t.Fatal("expected subtitle burn-in filter")
	}
	for _, fragment := range []string{
		"subtitles=/w/subtitles.srt",
		"force_style=",
		"FontName=Arial",
		"FontSize=48",
		"BorderStyle=3",
		"Outline=4",
		"Bold=1",
		"Alignment=2",
		"MarginV=50",
	} {
		if !strings.Contains(filter, fragment) {
			t.Fatalf("filter missing %q: %q", fragment, filter)
		}
	}

	if bitrate, _ := findArg(args, "-b:a"); bitrate != cfg.Render.AudioBitrate {
		t.Fatalf("unexpected audio bitrate: %q", bitrate)
	}
	if acodec, _ := findArg(args, "-c:a"); acodec != "aac" {
		t.Fatalf("unexpected audio codec: %q", acodec)
	}
	if vcodec, _ := findArg(args, "-c:v"); vcodec != "libx264" {
		t.Fatalf("unexpected video codec: %q", vcodec)
	}

	var maps []string
	for i, arg := range args {
		if arg == "-map" && i+1 < len(args) {
			maps = append(maps, args[i+1])
		}
	}
	if len(maps) != 2 || maps[0] != "0:v" || maps[1] != "1:a" {
		t.Fatalf("unexpected stream mapping: %v", maps)
	}

	if args[len(args)-1] != "/out/video.mp4" {
		t.Fatalf("expected output path last, got %q", args[len(args)-1])
	}
}

func TestMuxSurfacesCommandFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	muxer := render.NewMuxer(cfg, logging.NewNop())
	muxer.WithCommandRunner(failingRunner("encoder exploded"))

	err := muxer.Mux(context.Background(), "/w/merged.mp4", "/w/narration.mp3", "/w/subtitles.srt", "/out/video.mp4")
	if err == nil {
		t.Fatal("expected mux failure to surface")
	}
	if !strings.Contains(err.Error(), "encoder exploded") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
}
