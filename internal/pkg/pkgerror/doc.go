// Package pkgerror defines the structured Error returned by use cases. Its
// Type and Code decide the HTTP status at the router edge; validation errors
// may expose their cause through Detail, server errors never do.
package pkgerror
