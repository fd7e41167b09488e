// Package batch runs one tool operation over several ids and reports a
// per-id outcome, so a single bad id does not fail the whole call.
package batch
