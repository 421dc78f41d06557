// Package models defines the persistent entities (users, roles, and their
// join table), the create/update input schemas, and the repository
// descriptors that bind them to the generic data-access layer. Models
// self-register for table bootstrap on package load.
package models
