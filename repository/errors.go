package repository

import (
	"errors"
	"fmt"
	"strings"

	"lawsuit_tracker_go/apperrors"

	"gorm.io/gorm"
)

// translateError maps driver and GORM errors onto the apperrors taxonomy.
// SQLite and libSQL report constraint failures only through the message, e.g.
// "UNIQUE constraint failed: lawyers.email".
func translateError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsOperational(err) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewConflictError("")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewReferenceError()
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidValue):
		return apperrors.NewValidationError("Database validation failed")
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return apperrors.NewConflictError(constraintColumn(msg, "UNIQUE constraint failed"))
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return apperrors.NewReferenceError()
	case strings.Contains(msg, "NOT NULL constraint failed"):
		field := constraintColumn(msg, "NOT NULL constraint failed")
		return apperrors.FieldInvalid(field, field+" is required", nil)
	case strings.Contains(msg, "CHECK constraint failed"):
		return apperrors.NewValidationError("Database validation failed")
	}

	return fmt.Errorf("%s: database operation failed: %w", resource, err)
}

// constraintColumn extracts "email" from "UNIQUE constraint failed: lawyers.email".
// Composite constraints report the first column.
func constraintColumn(msg, marker string) string {
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(strings.TrimPrefix(msg[idx+len(marker):], ":"))
	if comma := strings.Index(rest, ","); comma >= 0 {
		rest = rest[:comma]
	}
	if fields := strings.Fields(rest); len(fields) > 0 {
		rest = fields[0]
	}
	if dot := strings.LastIndex(rest, "."); dot >= 0 {
		rest = rest[dot+1:]
	}
	return rest
}
