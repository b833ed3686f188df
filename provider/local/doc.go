// Package local is a self hosted identity provider for authsync.
//
// Accounts live in a bun "users" table, passwords are bcrypt hashed and
// sessions are HS256 JWTs. The provider keeps one active session per
// instance and fans change events out to subscribers, which makes it a drop
// in authsync.IdentityProvider for single user deployments and tests.
package local
