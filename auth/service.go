// Package auth implements registration, login, session resolution, and the
// password-reset token lifecycle.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/config"
	"github.com/user/innate-go/db"
	"github.com/user/innate-go/mailer"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// AuthService holds the authentication business logic. Dependencies are
// injected through the constructor: the database, the token service, the
// mailer, and auth settings.
type AuthService struct {
	db      db.Querier
	cfg     config.AuthConfig
	tokens  *TokenService
	mail    mailer.Mailer
	baseURL string
}

// NewAuthService creates a new AuthService.
func NewAuthService(q db.Querier, cfg config.AuthConfig, tokens *TokenService, mail mailer.Mailer, baseURL string) *AuthService {
	return &AuthService{
		db:      q,
		cfg:     cfg,
		tokens:  tokens,
		mail:    mail,
		baseURL: baseURL,
	}
}

// Tokens exposes the token service, e.g. for the session middleware.
func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

// Register creates a new user. Username and email uniqueness is enforced by
// the database; a collision surfaces as a ConflictError naming the offending
// field.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hashed, err := HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: hashed,
	}

	query := `INSERT INTO users (username, email, password)
	          VALUES ($1, $2, $3)
	          RETURNING id, image_file, created_at`
	err = s.db.QueryRow(ctx, query, user.Username, user.Email, user.HashedPassword).
		Scan(&user.ID, &user.ImageFile, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewConflictError("username already exists", nil)
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email already exists", nil)
			}
			return nil, apperror.NewConflictError("user already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// Login verifies credentials and issues a session token. A missing account
// and a wrong password produce the same generic failure so the response does
// not reveal which field was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	user, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if !CheckPassword(req.Password, user.HashedPassword) {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	ttl := s.SessionTTL(req.Remember)
	token, err := s.tokens.Issue(user.ID, PurposeSession, ttl)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue session token", err)
	}

	return &SessionResponse{
		Token:      token,
		TokenType:  "Bearer",
		ExpiresIn:  int64(ttl / time.Second),
		RedirectTo: SafeNextPath(req.Next),
	}, nil
}

// SessionTTL returns the session lifetime for a plain or remembered login.
func (s *AuthService) SessionTTL(remember bool) time.Duration {
	if remember {
		return s.cfg.RememberDuration
	}
	return s.cfg.SessionDuration
}

// RequestPasswordReset issues a reset token for the account registered under
// email and hands the reset link to the mailer. Delivery failure is surfaced
// as a MailError, not swallowed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError("no account with that email", nil)
		}
		return apperror.NewDatabaseError("failed to look up user", err)
	}

	token, err := s.tokens.Issue(user.ID, PurposeReset, s.cfg.ResetDuration)
	if err != nil {
		return apperror.NewInternalError("failed to issue reset token", err)
	}

	resetURL := fmt.Sprintf("%s/auth/reset_password/%s", s.baseURL, token)
	return s.mail.SendPasswordReset(ctx, user.Email, resetURL)
}

// ResetPassword verifies the reset token and replaces the user's password
// hash. Old sessions and outstanding reset tokens stay valid until their own
// expiry; the tokens are stateless and carry no revocation state.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.Verify(token, PurposeReset)
	if err != nil {
		return err
	}

	hashed, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}

	tag, err := s.db.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hashed, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		// Token verified but the account is gone.
		return apperror.NewNotFoundError("user not found", nil)
	}
	return nil
}

// GetUserByID retrieves a user by primary key.
func (s *AuthService) GetUserByID(ctx context.Context, userID int) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, image_file, created_at FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.ImageFile, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, image_file, created_at FROM users WHERE username = $1`
	err := s.db.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.ImageFile, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user '%s' not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by username", err)
	}
	return &user, nil
}

func (s *AuthService) getUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, image_file, created_at FROM users WHERE email = $1`
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).
		Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.ImageFile, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
