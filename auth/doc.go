// Package auth implements credential handling (bcrypt password hashing and
// signed access tokens) and the authentication pipeline: registration, login,
// bearer-token session resolution, and admin authorization.
package auth
