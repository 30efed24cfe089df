package refresh

import "context"

// Repository persists the refresh journal and the last-good snapshot.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
	SaveLastGood(ctx context.Context, snap *CachedSnapshot) error
	LastGood(ctx context.Context, endpoint string) (*CachedSnapshot, error)
}
