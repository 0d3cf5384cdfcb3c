// Package main hosts the storyreel CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the full project workflow: idea and
// script generation, narration transcription, section planning, stock clip
// retrieval, render queueing, and the combined daemon plus HTTP API process.
// Configuration resolution and store access are centralized here so
// subcommands stay focused on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
