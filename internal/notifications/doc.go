// Package notifications delivers render lifecycle events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and degrades to a no-op when no topic is set, so workflow
// code can notify unconditionally. All callers depend only on the Service
// interface; swap in alternative transports there.
package notifications
