package profile

import "context"

// Store persists the profile map. Save writes every profile in ps; whether
// stored profiles missing from ps survive is up to the implementation.
// FileStore rewrites the whole file, PostgresStore only upserts.
type Store interface {
	Load(ctx context.Context) (Profiles, error)
	Save(ctx context.Context, ps Profiles) error
}

// Counter is implemented by stores that can count profiles without loading them.
type Counter interface {
	Count(ctx context.Context) (int, error)
}
