package note

import "context"

// Repository is the persistence contract of the notes collection.
// Update must run fn and persist its result as one critical section.
type Repository interface {
	List(ctx context.Context) ([]Note, error)
	Update(ctx context.Context, fn func([]Note) ([]Note, error)) error
}

// ParentChecker reports whether an encounter exists.
type ParentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}
