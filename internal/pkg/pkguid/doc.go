// Package pkguid provides helpers for generating unique identifiers.
//
// Request correlation ids are UUIDv7 strings; stored records use
// Snowflake numbers.
package pkguid
