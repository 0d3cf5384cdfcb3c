// Package projects persists video projects and their render lifecycle in SQLite.
//
// A project carries the artifacts accumulated by the preparation steps (idea,
// script, narration audio, word captions, visual sections) and a status that
// doubles as the render state machine: pending -> processing_clips ->
// concatenating -> subtitling -> muxing -> completed, or failed.
package projects
