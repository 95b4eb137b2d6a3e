package store

import (
	"context"

	"github.com/rogally/allychat/internal/profile"
)

// Store provides access to the passage corpus.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return s.driver.Ping(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) VectorSearchPassages(ctx context.Context, find *FindSimilarPassages) ([]*RetrievedPassage, error) {
	return s.driver.VectorSearchPassages(ctx, find)
}

func (s *Store) VectorSearchPassagesCast(ctx context.Context, find *FindSimilarPassages) ([]*RetrievedPassage, error) {
	return s.driver.VectorSearchPassagesCast(ctx, find)
}

func (s *Store) TextSearchPassages(ctx context.Context, find *FindPassagesByText) ([]*RetrievedPassage, error) {
	return s.driver.TextSearchPassages(ctx, find)
}
