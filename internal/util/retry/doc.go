// Package retry provides exponential-backoff retries for provider calls.
//
// Errors wrapped with Fatal are never retried; everything else is retried
// until the attempt budget is exhausted or the context is cancelled.
package retry
