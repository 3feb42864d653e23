package world

import "fmt"

// EntityNotFoundError is returned when an entity id does not resolve to a
// live entity.
type EntityNotFoundError struct {
	Id EntityId
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.Id)
}
