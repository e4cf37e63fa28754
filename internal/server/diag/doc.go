// Package diag serves operator diagnostics for a running ring log: the
// sector table dump, counts, and Prometheus metrics.
//
// The engine itself is single-writer/single-reader; the server takes the
// caller's lock around every engine access so diagnostics can run next to
// an active writer.
package diag
