package encounter

import "context"

// Repository is the persistence contract of the encounters collection.
// Update must run fn and persist its result as one critical section.
type Repository interface {
	List(ctx context.Context) ([]Encounter, error)
	Update(ctx context.Context, fn func([]Encounter) ([]Encounter, error)) error
}

// ParentChecker reports whether a patient exists. It is consulted on create
// only when strict references are enabled.
type ParentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}
