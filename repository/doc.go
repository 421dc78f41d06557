// Package repository provides a generic repository abstraction built on Bun
// for CRUD operations over a session, filtered queries, pagination, and
// declarative many-to-many relation handling with translated constraint
// violations.
package repository
