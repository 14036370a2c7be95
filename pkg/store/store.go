package store

import "context"

// Store is the durable backend for editor content. Implementations persist
// the already-encoded payload produced by Codec and treat it as opaque.
type Store interface {
	// Load returns the stored payload for a document. found is false when
	// no row exists, which is distinct from a stored empty payload.
	Load(ctx context.Context, id string) (payload string, found bool, err error)

	// Save upserts the payload for a document, refreshing its updated-at
	// timestamp. Saving the same payload twice is a no-op for the stored
	// state.
	Save(ctx context.Context, id string, payload string) error

	// Delete removes the document row. Deleting an absent row is not an
	// error.
	Delete(ctx context.Context, id string) error

	// Close releases the backend's resources.
	Close() error
}
