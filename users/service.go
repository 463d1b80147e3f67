// Package users implements account profile management: reading the profile,
// updating username/email, and replacing the profile picture.
package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/auth"
	"github.com/user/innate-go/avatar"
	"github.com/user/innate-go/db"
)

const pgUniqueViolation = "23505"

// AvatarURLPrefix is where stored profile pictures are served from.
const AvatarURLPrefix = "/static/profile_pics/"

// UserService provides profile operations over the credential store.
type UserService struct {
	db      db.Querier
	avatars *avatar.Store
}

// NewUserService creates a new UserService.
func NewUserService(q db.Querier, avatars *avatar.Store) *UserService {
	return &UserService{db: q, avatars: avatars}
}

// GetProfile retrieves the profile for userID.
func (s *UserService) GetProfile(ctx context.Context, userID int) (*ProfileResponse, error) {
	var user auth.User
	query := `SELECT id, username, email, image_file, created_at FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Username, &user.Email, &user.ImageFile, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return profileResponse(&user), nil
}

// UpdateAccount applies a partial username/email update. Uniqueness
// collisions surface as ConflictError naming the field.
func (s *UserService) UpdateAccount(ctx context.Context, userID int, req *UpdateAccountRequest) (*ProfileResponse, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if req.Username != nil && *req.Username != "" {
		setClauses = append(setClauses, fmt.Sprintf("username = $%d", argID))
		args = append(args, *req.Username)
		argID++
	}
	if req.Email != nil && *req.Email != "" {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, strings.ToLower(*req.Email))
		argID++
	}

	if len(setClauses) == 0 {
		return s.GetProfile(ctx, userID)
	}

	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING id, username, email, image_file, created_at
	`, strings.Join(setClauses, ", "), argID)

	var user auth.User
	err := s.db.QueryRow(ctx, query, args...).
		Scan(&user.ID, &user.Username, &user.Email, &user.ImageFile, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewConflictError("username already exists", nil)
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email already exists", nil)
			}
		}
		return nil, apperror.NewDatabaseError("failed to update account", err)
	}

	return profileResponse(&user), nil
}

// UpdateAvatar stores a new profile picture for userID and removes the old
// one. The default sentinel image is never deleted.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int, picture io.Reader) (*ProfileResponse, error) {
	newFile, err := s.avatars.Save(picture)
	if err != nil {
		return nil, err
	}

	// Fetch the current file first so it can be cleaned up after the update.
	var user auth.User
	var oldFile string
	err = s.db.QueryRow(ctx, `SELECT image_file FROM users WHERE id = $1`, userID).Scan(&oldFile)
	if err != nil {
		_ = s.avatars.Remove(newFile)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get current avatar", err)
	}

	query := `
		UPDATE users
		SET image_file = $1
		WHERE id = $2
		RETURNING id, username, email, image_file, created_at
	`
	err = s.db.QueryRow(ctx, query, newFile, userID).
		Scan(&user.ID, &user.Username, &user.Email, &user.ImageFile, &user.CreatedAt)
	if err != nil {
		_ = s.avatars.Remove(newFile)
		return nil, apperror.NewDatabaseError("failed to update avatar", err)
	}

	_ = s.avatars.Remove(oldFile)
	return profileResponse(&user), nil
}

func profileResponse(user *auth.User) *ProfileResponse {
	return &ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		ImageFile: user.ImageFile,
		AvatarURL: AvatarURLPrefix + user.ImageFile,
		CreatedAt: user.CreatedAt,
	}
}
