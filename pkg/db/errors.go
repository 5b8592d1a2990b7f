package db

import "strings"

// Unique constraint names referenced by registration error mapping.
const (
	ConstraintUsersUsername = "users_username_key"
	ConstraintUsersEmail    = "users_email_key"
)

// IsUniqueViolation reports whether the provided error references a unique
// violation. When constraintName is provided, the helper looks for the
// constraint text in the error message; this also matches sqlite's
// "UNIQUE constraint failed: table.column" phrasing used in tests.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
