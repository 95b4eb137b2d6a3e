package store

import "context"

// Driver is an interface for the passage store driver.
type Driver interface {
	// VectorSearchPassages ranks passages by cosine similarity assuming the
	// embedding column has a native vector type.
	VectorSearchPassages(ctx context.Context, find *FindSimilarPassages) ([]*RetrievedPassage, error)

	// VectorSearchPassagesCast is the same ranking query with an explicit
	// cast of the stored embedding to a vector type, for stores whose
	// embedding column is an array-like representation.
	VectorSearchPassagesCast(ctx context.Context, find *FindSimilarPassages) ([]*RetrievedPassage, error)

	// TextSearchPassages performs a case-insensitive substring match against
	// passage text, in store-native order.
	TextSearchPassages(ctx context.Context, find *FindPassagesByText) ([]*RetrievedPassage, error)

	Ping(ctx context.Context) error
	Close() error
}
