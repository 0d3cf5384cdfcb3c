// Package render assembles the final video for a project. The pipeline takes
// the ordered visual sections, the narration audio, and the word-level
// captions, and runs four sequential stages: per-clip speed normalization,
// lossless concatenation, subtitle generation, and the final burn-in mux.
// Every stage shells out to ffmpeg; any stage failure aborts the whole render.
package render
