// Package pkgroutine runs named background tasks with a concurrency limit.
//
// The Manager collects returned errors and logs panics so that background
// work such as session sweeping does not crash the process silently.
package pkgroutine
