// Package cron runs periodic maintenance jobs for the booking backend. Only one
// worker instance executes a cycle at a time; the others skip it.
package cron

import "context"

// Job is one maintenance task. Run should be safe to repeat.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}
