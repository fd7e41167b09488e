// Package common holds the pieces every goopy tool package shares: argument
// decoding, JSON and error results, and the instrumented handler wrapper
// that adds spans, metrics and audit logging to each tool.
package common
