// Package queue persists dataset evaluation jobs and exposes the atomic
// operations of their lifecycle.
//
// Jobs move through pending, running, and the terminal done and failed
// statuses. The store keeps at most one active job per dataset via a
// partial unique index, claims the oldest pending job with a single
// conditional update, and stamps every mutation with a fresh updated
// timestamp. The Manager layers submission (duplicate check, dataset
// validation, insert) and worker reporting on top of the store.
package queue
