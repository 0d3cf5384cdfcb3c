// Package preflight validates the runtime environment before the daemon
// accepts render work: external binaries, directory permissions, free disk
// space, and configured API credentials.
package preflight
