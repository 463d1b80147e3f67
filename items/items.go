// Package items implements user-owned item records: a designation and a
// physical location, keyed to the owning user. The surface is intentionally
// small: create, and list your own.
package items

import (
	"context"
	"time"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/db"
)

// Item is a user-owned item record.
type Item struct {
	ID          int       `json:"id"`
	Designation string    `json:"designation"`
	Location    string    `json:"location"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewItemRequest carries the fields for creating an item.
type NewItemRequest struct {
	Designation string `json:"designation" example:"Multimeter"`
	Location    string `json:"location" example:"Shelf B3"`
}

// Service provides item operations.
type Service struct {
	db db.Querier
}

// NewService creates a new item Service.
func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

// Create stores a new item for ownerID.
func (s *Service) Create(ctx context.Context, ownerID int, req NewItemRequest) (*Item, error) {
	item := &Item{
		Designation: req.Designation,
		Location:    req.Location,
		OwnerID:     ownerID,
	}

	query := `
		INSERT INTO items (designation, location, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, req.Designation, req.Location, ownerID).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create item", err)
	}
	return item, nil
}

// ListByOwner returns all items belonging to ownerID, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID int) ([]Item, error) {
	query := `
		SELECT id, designation, location, owner_id, created_at
		FROM items
		WHERE owner_id = $1
		ORDER BY id DESC`
	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list items", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Designation, &item.Location, &item.OwnerID, &item.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan item row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate items", err)
	}
	return items, nil
}
