package openrouter

import (
	"fmt"
	"strings"
)

const ideaSystemPrompt = `You are a creative strategist for a documentary-style YouTube channel. ` +
	`You propose distinct, emotionally engaging video concepts and respond with JSON only.`

const scriptSystemPrompt = `You are a professional scriptwriter for narrated YouTube videos. ` +
	`You write vivid, well-paced scripts meant to be read aloud.`

const sectionSystemPrompt = `You are a video editor planning stock footage coverage for a narrated video. ` +
	`You respond with JSON only.`

func buildIdeaPrompt(count int, previousIdeas []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d unique and compelling ideas for YouTube videos. ", count)
	b.WriteString("Each idea should be a single sentence that describes what the video will be about.\n\n")

	if len(previousIdeas) > 0 {
		b.WriteString("IMPORTANT: Do NOT generate any ideas similar to these previously approved ideas:\n")
		for i, idea := range previousIdeas {
			fmt.Fprintf(&b, "%d. %s\n", i+1, idea)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Return the ideas as a JSON array of strings, nothing else. Format: ["idea 1", "idea 2", ...]`)
	return b.String()
}

func buildScriptPrompt(idea string) string {
	return fmt.Sprintf(`Write a compelling 3000-word script for a YouTube video about: %q

The script should:
- Be approximately 3000 words long
- Be engaging and emotional
- Include a strong hook at the beginning
- Have a clear narrative structure
- Be suitable for narration
- Include vivid descriptions and storytelling elements

Write ONLY the script text, nothing else.`, idea)
}

func buildSectionPrompt(words []WordTiming) string {
	totalDuration := 0.0
	if len(words) > 0 {
		totalDuration = words[len(words)-1].End
	}

	timings := make([]string, len(words))
	for i, word := range words {
		timings[i] = fmt.Sprintf("%s[%.1fs-%.1fs]", word.Text, word.Start, word.End)
	}

	return fmt.Sprintf(`Below is a transcript with word-level timestamps. Break it into visual sections for video editing. Each section needs a different background video from a stock footage library.

TRANSCRIPT WITH TIMINGS:
%s

TOTAL DURATION: %.2f seconds

Return ONLY a JSON array with this exact format (no markdown, no explanation):
[
  {
    "section_text": "brief description of what this section covers",
    "search_query": "stock footage search term",
    "start_time": 0.0,
    "end_time": 15.5
  }
]`, strings.Join(timings, " "), totalDuration)
}
