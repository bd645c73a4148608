package db

import "fmt"

// NotFoundError is returned when a record does not exist or belongs to
// another user.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
