// Package main hosts the winnow CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the evaluation job queue for
// operators: status summaries, job listings, retry and reclaim maintenance,
// database health checks, and configuration scaffolding. It centralizes
// configuration resolution and store access so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
