package alerts

import "context"

// Repository loads alerts and persists state changes.
type Repository interface {
	List(ctx context.Context) ([]Alert, error)
	Get(ctx context.Context, id int64) (*Alert, error)
	// UpdateState moves alert id from one state to another. It returns
	// ErrInvalidTransition when the stored state is no longer from.
	UpdateState(ctx context.Context, id int64, from, to State) error
}
