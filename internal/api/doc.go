// Package api exposes the HTTP control surface for storyreel.
//
// The router serves project listings, render triggers, final video downloads,
// and a health endpoint. Render requests are fire-and-forget: the handler
// validates preconditions, marks the project pending, and returns 202 while
// the workflow daemon picks the project up from the store.
package api
