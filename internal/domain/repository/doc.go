// Package repository declares the auth domain entities and the storage contracts the
// services depend on.
//
// Implementations live in internal/store/pg (PostgreSQL) and internal/store/memory.
//
// Conventions:
//   - context.Context is always the first parameter and bounds every call.
//   - Emails are stored and looked up lower-cased; callers normalize before calling.
//   - Refresh tokens are never stored in clear, only their SHA-256 digest.
//   - Domain errors live in errors.go; anything else is an infrastructure failure.
package repository
