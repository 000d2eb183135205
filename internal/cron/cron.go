// Package cron runs registered background jobs on cron schedules. The
// backup module uses it to take periodic archive exports.
package cron

import "context"

// Job is a unit of periodic work.
type Job interface {
	// Name identifies the job in logs and rejects double registration.
	Name() string

	// Schedule is a standard 5-field cron expression.
	Schedule() string

	// Run does one tick of work. Long jobs should honor ctx.
	Run(ctx context.Context) error
}