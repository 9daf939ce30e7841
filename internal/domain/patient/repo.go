package patient

import "context"

// Repository is the persistence contract of the patients collection.
// Update must run fn and persist its result as one critical section.
type Repository interface {
	List(ctx context.Context) ([]Patient, error)
	Update(ctx context.Context, fn func([]Patient) ([]Patient, error)) error
}
