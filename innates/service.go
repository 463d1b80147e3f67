// Package innates implements CRUD over user-owned innates, with ownership
// enforcement on every mutation and pagination on the listing paths.
package innates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/auth"
	"github.com/user/innate-go/db"
)

// DefaultPerPage is the page size when the caller does not request one.
const DefaultPerPage = 2

// Service defines the innate operations the handlers depend on.
type Service interface {
	Create(ctx context.Context, ownerID int, req NewInnateRequest) (*Innate, error)
	GetByID(ctx context.Context, id int) (*Innate, error)
	Update(ctx context.Context, id, principalID int, req UpdateInnateRequest) (*Innate, error)
	Delete(ctx context.Context, id, principalID int) error
	ListPage(ctx context.Context, page, perPage int) (*PaginatedInnatesResponse, error)
	ListByOwner(ctx context.Context, username string, page, perPage int) (*PaginatedInnatesResponse, error)
}

type pgService struct {
	db db.Querier
}

// NewService creates the PostgreSQL-backed innate service.
func NewService(q db.Querier) Service {
	return &pgService{db: q}
}

const innateColumns = `i.id, i.title, i.innated, i.owner_id, u.username, i.created_at`

// Create stores a new innate for ownerID. The owner reference is always the
// integer user id, never a richer object.
func (s *pgService) Create(ctx context.Context, ownerID int, req NewInnateRequest) (*Innate, error) {
	innate := &Innate{
		Title:   req.Title,
		Innated: req.Innated,
		OwnerID: ownerID,
	}

	query := `
		INSERT INTO innates (title, innated, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, (SELECT username FROM users WHERE id = $3)`
	err := s.db.QueryRow(ctx, query, req.Title, req.Innated, ownerID).
		Scan(&innate.ID, &innate.CreatedAt, &innate.OwnerUsername)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create innate", err)
	}
	return innate, nil
}

// GetByID retrieves one innate.
func (s *pgService) GetByID(ctx context.Context, id int) (*Innate, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM innates i
		JOIN users u ON u.id = i.owner_id
		WHERE i.id = $1`, innateColumns)

	var innate Innate
	err := s.db.QueryRow(ctx, query, id).Scan(
		&innate.ID, &innate.Title, &innate.Innated,
		&innate.OwnerID, &innate.OwnerUsername, &innate.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("innate %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get innate", err)
	}
	return &innate, nil
}

// Update replaces the title and body of an innate. A missing id yields
// NotFound; an existing innate owned by someone else yields Forbidden, kept
// distinct so ownership is checked only on resources that exist.
func (s *pgService) Update(ctx context.Context, id, principalID int, req UpdateInnateRequest) (*Innate, error) {
	ownerID, err := s.ownerOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanMutate(principalID, ownerID) {
		return nil, apperror.NewUnauthorizedError("you do not own this innate", nil)
	}

	query := `
		UPDATE innates
		SET title = $1, innated = $2
		WHERE id = $3
		RETURNING id, title, innated, owner_id, created_at,
		          (SELECT username FROM users WHERE id = owner_id)`
	var innate Innate
	err = s.db.QueryRow(ctx, query, req.Title, req.Innated, id).Scan(
		&innate.ID, &innate.Title, &innate.Innated,
		&innate.OwnerID, &innate.CreatedAt, &innate.OwnerUsername,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update innate", err)
	}
	return &innate, nil
}

// Delete removes an innate after the same ownership check as Update.
func (s *pgService) Delete(ctx context.Context, id, principalID int) error {
	ownerID, err := s.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanMutate(principalID, ownerID) {
		return apperror.NewUnauthorizedError("you do not own this innate", nil)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM innates WHERE id = $1`, id); err != nil {
		return apperror.NewDatabaseError("failed to delete innate", err)
	}
	return nil
}

// ListPage returns one page of all innates, newest first.
func (s *pgService) ListPage(ctx context.Context, page, perPage int) (*PaginatedInnatesResponse, error) {
	page, perPage = normalizePaging(page, perPage)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM innates`).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count innates", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM innates i
		JOIN users u ON u.id = i.owner_id
		ORDER BY i.id DESC
		LIMIT $1 OFFSET $2`, innateColumns)
	rows, err := s.db.Query(ctx, query, perPage, (page-1)*perPage)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list innates", err)
	}
	defer rows.Close()

	innates, err := scanInnates(rows)
	if err != nil {
		return nil, err
	}

	return paginated(innates, page, perPage, total), nil
}

// ListByOwner returns one page of the named user's innates. An unknown
// username is NotFound; a page past the end is an empty list.
func (s *pgService) ListByOwner(ctx context.Context, username string, page, perPage int) (*PaginatedInnatesResponse, error) {
	page, perPage = normalizePaging(page, perPage)

	var ownerID int
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user '%s' not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM innates WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count innates", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM innates i
		JOIN users u ON u.id = i.owner_id
		WHERE i.owner_id = $1
		ORDER BY i.id DESC
		LIMIT $2 OFFSET $3`, innateColumns)
	rows, err := s.db.Query(ctx, query, ownerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list innates", err)
	}
	defer rows.Close()

	innates, err := scanInnates(rows)
	if err != nil {
		return nil, err
	}

	return paginated(innates, page, perPage, total), nil
}

// ownerOf returns the owner id of an innate, or NotFound.
func (s *pgService) ownerOf(ctx context.Context, id int) (int, error) {
	var ownerID int
	err := s.db.QueryRow(ctx, `SELECT owner_id FROM innates WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFoundError(fmt.Sprintf("innate %d not found", id), nil)
		}
		return 0, apperror.NewDatabaseError("failed to get innate owner", err)
	}
	return ownerID, nil
}

func scanInnates(rows pgx.Rows) ([]Innate, error) {
	innates := []Innate{}
	for rows.Next() {
		var innate Innate
		if err := rows.Scan(
			&innate.ID, &innate.Title, &innate.Innated,
			&innate.OwnerID, &innate.OwnerUsername, &innate.CreatedAt,
		); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan innate row", err)
		}
		innates = append(innates, innate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate innates", err)
	}
	return innates, nil
}

func normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func paginated(innates []Innate, page, perPage, total int) *PaginatedInnatesResponse {
	return &PaginatedInnatesResponse{
		Innates:    innates,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}
