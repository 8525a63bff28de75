package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ConstraintViolation reports a uniqueness constraint rejected by the store.
// Services match on it instead of sniffing driver error strings.
type ConstraintViolation struct {
	Field string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation on %s", e.Field)
}

// IsConstraintViolation reports whether err wraps a ConstraintViolation on the
// given field.
func IsConstraintViolation(err error, field string) bool {
	var cv *ConstraintViolation
	return errors.As(err, &cv) && cv.Field == field
}
