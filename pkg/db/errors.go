package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique-constraint
// violation. When field is provided, the helper additionally looks for the
// field/constraint text in the error message; this catches both the Postgres
// constraint name (uq_users_username) and the sqlite form
// (users.username) used by the test driver.
func IsUniqueViolation(err error, field string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if field == "" {
		return true
	}
	return strings.Contains(msg, field)
}
