// Package pkgauth holds the authentication primitives shared by modules:
// bcrypt password hashing, opaque bearer-token sessions with expiry, and the
// authenticated identity carried in a request context.
package pkgauth
