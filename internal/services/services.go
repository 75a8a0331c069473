// package services defines interface Store for interacting with the remote item store
package services

import (
	"context"

	"github.com/desertthunder/tdx/internal/models"
)

// Store defines the operations the synchronizer performs against the remote item store.
type Store interface {
	// List retrieves items in store order, scoped by filter.
	List(ctx context.Context, filter models.Filter) ([]models.Item, error)

	// Create creates an item with the given name and completed=false.
	// Returns the stored record carrying its assigned ID.
	Create(ctx context.Context, name string) (*models.Item, error)

	// Update replaces the name and completed flag of an existing item.
	Update(ctx context.Context, item models.Item) error

	// Delete removes an item by ID.
	Delete(ctx context.Context, id int) error
}
