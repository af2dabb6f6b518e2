package db

import (
	"strings"

	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure. When
// constraintName is provided only that constraint (or index) matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if info, ok := pkgerrors.PostgresInfo(err); ok {
		if info.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || info.Constraint == constraintName
	}

	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") && !strings.Contains(msg, "duplicate key value") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}
