// Package client is a Go SDK for the chemviz HTTP API.
//
// Every call that needs authentication takes the Credential returned by
// Login. The client keeps no token state of its own, so one Client can serve
// several users. When the server answers 401 the call returns ErrUnauthorized
// and the caller should drop its credential and log in again.
package client
