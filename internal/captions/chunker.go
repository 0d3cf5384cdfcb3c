package captions

import "strings"

// Word is a single transcribed word with its timing in seconds.
type Word struct {
	Text       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Chunk is a run of consecutive words grouped into one subtitle cue.
type Chunk struct {
	Words []string `json:"words"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Text  string   `json:"text"`
}

const (
	// maxChunkSpanSeconds closes a cue once adding the next word would push
	// its on-screen span past this length.
	maxChunkSpanSeconds = 2.0
	// maxChunkWords caps how many words a single cue may hold.
	maxChunkWords = 4
)

// BuildChunks groups chronological words into subtitle cues. Every input word
// appears in exactly one chunk, in order. The word that triggers a close
// starts the next chunk rather than joining the closed one.
func BuildChunks(words []Word) []Chunk {
	if len(words) == 0 {
		return nil
	}

	var chunks []Chunk
	var current []Word
	chunkStart := words[0].Start

	for _, word := range words {
		if word.End-chunkStart > maxChunkSpanSeconds || len(current) >= maxChunkWords {
			if len(current) > 0 {
				chunks = append(chunks, newChunk(current, chunkStart))
			}
			current = []Word{word}
			chunkStart = word.Start
			continue
		}
		current = append(current, word)
	}

	if len(current) > 0 {
		chunks = append(chunks, newChunk(current, chunkStart))
	}

	return chunks
}

func newChunk(words []Word, start float64) Chunk {
	texts := make([]string, len(words))
	for i, word := range words {
		texts[i] = word.Text
	}
	return Chunk{
		Words: texts,
		Start: start,
		End:   words[len(words)-1].End,
		Text:  strings.Join(texts, " "),
	}
}
