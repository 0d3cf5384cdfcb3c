// Package workflow runs the background render loop. The manager polls the
// project store for pending renders, validates their inputs, and drives the
// render pipeline one project at a time, persisting stage transitions and the
// final outcome back to the store.
package workflow
