// Package runner composes queue actors, a worker pool and a schedule actor
// into one pipeline driven by a single context.
//
// A Runner is built once and started once, either with Listen, which
// blocks until the whole pipeline has stopped, or with Start, which returns
// right away and reports the outcome through Done and Err. Cancelling the
// context shuts every component down cooperatively: each one notices at
// its next blocking point. Items still queued or in flight are dropped,
// and a transform that ignores its context is left to finish on its own.
//
// The Client returned next to the Runner is the only way in: submit work,
// poll or await results, and manage cron jobs that submit work on their
// own.
package runner
