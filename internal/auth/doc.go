// Package auth implements the identity gate: local user accounts with
// bcrypt passwords, cookie sessions backed by SQLite, API bearer
// tokens, and the gin middleware that resolves the caller's identity
// for every request.
//
// The rest of the application never reads identity from anywhere but
// the request context populated here. Unauthenticated mutating
// requests are refused; unauthenticated reads proceed with the zero
// user ID and naturally scope to nothing.
package auth
