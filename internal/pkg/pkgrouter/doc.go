// Package pkgrouter is the HTTP edge of the service: an httprouter based
// router whose handlers return (payload, error), the JSON envelopes those are
// encoded into, and the middleware (recovery, correlation id, request logging,
// bearer token authentication) wrapped around them.
package pkgrouter
