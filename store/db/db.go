// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/rogally/allychat/internal/profile"
	"github.com/rogally/allychat/store"
	"github.com/rogally/allychat/store/db/postgres"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unsupported database driver: %s", profile.Driver)
	}
}
