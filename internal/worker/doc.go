// Package worker runs the background evaluation loop.
//
// The Runner claims pending jobs one at a time, hands each to the configured
// Evaluator, and records the outcome through the queue manager: the result
// payload plus a done status on success, a failed status carrying the error
// text otherwise. A flock-based lock file under the state directory prevents
// concurrent runners, and a periodic sweep returns stale running claims to
// pending so a crashed worker cannot wedge its datasets.
//
// The evaluation computation itself lives behind the Evaluator interface;
// this package owns only claiming, scheduling, and reporting.
package worker
