// Package logging configures structured slog output for the daemon and CLI.
//
// Two handler formats are supported: a human-oriented console handler and a
// machine-oriented JSON handler. Helpers attach standardized fields (project
// id, stage, correlation id) pulled from request context.
package logging
