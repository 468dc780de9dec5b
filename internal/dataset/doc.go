// Package dataset defines the dataset structures winnow evaluates and the
// completeness checks that gate queue submission.
//
// Dataset content, schema validation, and low-level feature lookups live in
// external systems; this package models their contracts as narrow interfaces
// and layers the pre-enqueue completeness validation on top of them.
package dataset
