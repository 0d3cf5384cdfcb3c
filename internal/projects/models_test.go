package projects_test

import (
	"strings"
	"testing"

	"storyreel/internal/captions"
	"storyreel/internal/projects"
)

func TestParseStatus(t *testing.T) {
	status, ok := projects.ParseStatus("  Processing_Clips ")
	if !ok || status != projects.StatusProcessingClips {
		t.Fatalf("expected processing_clips, got %q ok=%v", status, ok)
	}

	if _, ok := projects.ParseStatus("exploded"); ok {
		t.Fatal("expected unknown status to fail")
	}
}

func TestIsRenderingStatus(t *testing.T) {
	rendering := []projects.Status{
		projects.StatusProcessingClips,
		projects.StatusConcatenating,
		projects.StatusSubtitling,
		projects.StatusMuxing,
	}
	for _, status := range rendering {
		if !projects.IsRenderingStatus(status) {
			t.Fatalf("expected %s to be a rendering status", status)
		}
	}
	for _, status := range []projects.Status{projects.StatusDraft, projects.StatusPending, projects.StatusCompleted, projects.StatusFailed} {
		if projects.IsRenderingStatus(status) {
			t.Fatalf("did not expect %s to be a rendering status", status)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !projects.IsTerminal(projects.StatusCompleted) || !projects.IsTerminal(projects.StatusFailed) {
		t.Fatal("completed and failed should be terminal")
	}
	if projects.IsTerminal(projects.StatusMuxing) {
		t.Fatal("muxing should not be terminal")
	}
}

func TestAllSectionsSelected(t *testing.T) {
	if projects.AllSectionsSelected(nil) {
		t.Fatal("empty section list should not count as selected")
	}

	clip := &projects.ClipRef{ID: 101, URL: "https://example.com/v/101"}
	sections := []projects.Section{
		{Text: "first", Selected: clip},
		{Text: "second"},
	}
	if projects.AllSectionsSelected(sections) {
		t.Fatal("expected false when a section lacks a clip")
	}

	sections[1].Selected = clip
	if !projects.AllSectionsSelected(sections) {
		t.Fatal("expected true when every section has a clip")
	}
}

func TestWordsRoundTrip(t *testing.T) {
	project := &projects.Project{}

	words, err := project.Words()
	if err != nil {
		t.Fatalf("Words on empty project failed: %v", err)
	}
	if words != nil {
		t.Fatalf("expected nil words, got %#v", words)
	}

	input := []captions.Word{
		{Text: "hello", Start: 0.0, End: 0.4, Confidence: 0.98},
		{Text: "world", Start: 0.5, End: 0.9, Confidence: 0.97},
	}
	if err := project.SetWords(input); err != nil {
		t.Fatalf("SetWords failed: %v", err)
	}

	decoded, err := project.Words()
	if err != nil {
		t.Fatalf("Words failed: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Text != "hello" || decoded[1].End != 0.9 {
		t.Fatalf("unexpected decoded words: %#v", decoded)
	}
}

func TestSectionsRoundTrip(t *testing.T) {
	project := &projects.Project{}
	input := []projects.Section{
		{
			Text:        "the ocean at dawn",
			SearchQuery: "ocean sunrise",
			StartTime:   0,
			EndTime:     4.2,
			Duration:    4.2,
			Selected:    &projects.ClipRef{ID: 7, URL: "https://example.com/v/7", Width: 1920, Height: 1080},
		},
	}
	if err := project.SetSections(input); err != nil {
		t.Fatalf("SetSections failed: %v", err)
	}

	decoded, err := project.Sections()
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Selected == nil || decoded[0].Selected.ID != 7 {
		t.Fatalf("unexpected decoded sections: %#v", decoded)
	}
	if decoded[0].SearchQuery != "ocean sunrise" {
		t.Fatalf("search query not preserved: %q", decoded[0].SearchQuery)
	}
}

func TestSetFailed(t *testing.T) {
	project := &projects.Project{Status: projects.StatusMuxing}
	project.SetFailed("mux exploded")
	if project.Status != projects.StatusFailed {
		t.Fatalf("expected failed status, got %s", project.Status)
	}
	if project.ErrorMessage != "mux exploded" || project.ProgressMessage != "mux exploded" {
		t.Fatalf("failure message not recorded: %#v", project)
	}
}

func TestTitleFromIdea(t *testing.T) {
	cases := []struct {
		name string
		idea string
		want string
	}{
		{"empty", "", "Untitled Project"},
		{"whitespace", "   ", "Untitled Project"},
		{"simple", "the history of lighthouses.", "The History Of Lighthouses"},
		{"already short", "Deep sea creatures", "Deep Sea Creatures"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := projects.TitleFromIdea(tc.idea); got != tc.want {
				t.Fatalf("TitleFromIdea(%q) = %q, want %q", tc.idea, got, tc.want)
			}
		})
	}

	long := strings.Repeat("word ", 30)
	title := projects.TitleFromIdea(long)
	if len([]rune(title)) > 60 {
		t.Fatalf("expected truncated title, got %d runes", len([]rune(title)))
	}
}
