// Package database provides connection management, request-scoped storage
// sessions, integrity-error classification and translation, model
// registration, table bootstrapping, configuration types, and logging built
// on top of Bun.
package database
