package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique-constraint
// violation. A non-empty constraintName matches directly when the driver
// names the index; sqlite reports "UNIQUE constraint failed: <table>.<column>"
// instead, so the generic duplicate-key texts match as a fallback.
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
