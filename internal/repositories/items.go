package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
)

var _ models.Repository = (*ItemRepository)(nil)

// ItemRepository implements [models.Repository] over the todos table.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new [ItemRepository] with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// List retrieves items in insertion order. A scoped filter restricts by completed.
func (r *ItemRepository) List(filter models.Filter) ([]models.Item, error) {
	query := `SELECT id, name, completed FROM todos`
	args := []any{}

	if completed, ok := filter.Completed(); ok {
		query += " WHERE completed = ?"
		args = append(args, completed)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// Create inserts a new item and returns it with the ID assigned by the database
func (r *ItemRepository) Create(body models.ItemBody) (*models.Item, error) {
	if err := validate(body); err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := r.db.Exec(
		`INSERT INTO todos (name, completed, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		body.Name, body.Completed, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	return &models.Item{ID: int(id), Name: body.Name, Completed: body.Completed}, nil
}

// Get retrieves an item by ID
func (r *ItemRepository) Get(id int) (*models.Item, error) {
	var item models.Item
	err := r.db.QueryRow(`SELECT id, name, completed FROM todos WHERE id = ?`, id).
		Scan(&item.ID, &item.Name, &item.Completed)
	if err != nil {
		return nil, notFound(err, id, "query")
	}
	return &item, nil
}

// Update replaces the name and completed flag of an existing item
func (r *ItemRepository) Update(id int, body models.ItemBody) (*models.Item, error) {
	if err := validate(body); err != nil {
		return nil, err
	}

	result, err := r.db.Exec(
		`UPDATE todos SET name = ?, completed = ?, updated_at = ? WHERE id = ?`,
		body.Name, body.Completed, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	if err := checkAffected(result, id); err != nil {
		return nil, err
	}

	return &models.Item{ID: id, Name: body.Name, Completed: body.Completed}, nil
}

// Delete removes an item by ID. Items are hard-deleted; the store has no history.
func (r *ItemRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return checkAffected(result, id)
}

func validate(body models.ItemBody) error {
	if strings.TrimSpace(body.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	return nil
}
