// Package captions turns word-level caption timings into subtitle cues.
//
// Words arrive from the transcription service in chronological order. The
// chunker groups them into short on-screen cues and the SRT writer serializes
// those cues into the SubRip format consumed by the final mux stage.
package captions
