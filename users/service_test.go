package users

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/avatar"
)

func newMockUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface, *avatar.Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := avatar.NewStore(t.TempDir())
	require.NoError(t, err)
	return NewUserService(mock, store), mock, store
}

func profileRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "email", "image_file", "created_at"})
}

// pngBytes renders a small solid image for upload tests.
func pngBytes(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &buf
}

func TestUserService_GetProfile(t *testing.T) {
	svc, mock, _ := newMockUserService(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, username, email, image_file, created_at FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(profileRows().AddRow(7, "amari", "amari@example.com", "default.jpg", created))

	profile, err := svc.GetProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "amari", profile.Username)
	assert.Equal(t, AvatarURLPrefix+"default.jpg", profile.AvatarURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	svc, mock, _ := newMockUserService(t)

	mock.ExpectQuery("SELECT id, username, email, image_file, created_at FROM users WHERE id").
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetProfile(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UpdateAccount(t *testing.T) {
	svc, mock, _ := newMockUserService(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE users").
		WithArgs("newname", "new@example.com", 7).
		WillReturnRows(profileRows().AddRow(7, "newname", "new@example.com", "default.jpg", created))

	username := "newname"
	email := "New@Example.com"
	profile, err := svc.UpdateAccount(context.Background(), 7, &UpdateAccountRequest{
		Username: &username,
		Email:    &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "newname", profile.Username)
	assert.Equal(t, "new@example.com", profile.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UpdateAccount_NoChanges(t *testing.T) {
	svc, mock, _ := newMockUserService(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// An empty update degrades to a plain profile read.
	mock.ExpectQuery("SELECT id, username, email, image_file, created_at FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(profileRows().AddRow(7, "amari", "amari@example.com", "default.jpg", created))

	profile, err := svc.UpdateAccount(context.Background(), 7, &UpdateAccountRequest{})
	require.NoError(t, err)
	assert.Equal(t, "amari", profile.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UpdateAccount_UsernameTaken(t *testing.T) {
	svc, mock, _ := newMockUserService(t)

	mock.ExpectQuery("UPDATE users").
		WithArgs("taken", 7).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	username := "taken"
	_, err := svc.UpdateAccount(context.Background(), 7, &UpdateAccountRequest{Username: &username})
	require.Error(t, err)
	assert.True(t, apperror.IsConflictError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UpdateAvatar(t *testing.T) {
	svc, mock, store := newMockUserService(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT image_file FROM users WHERE id").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"image_file"}).AddRow("default.jpg"))
	mock.ExpectQuery("UPDATE users").
		WithArgs(pgxmock.AnyArg(), 7).
		WillReturnRows(profileRows().AddRow(7, "amari", "amari@example.com", "new.jpg", created))

	profile, err := svc.UpdateAvatar(context.Background(), 7, pngBytes(t, 400, 300))
	require.NoError(t, err)
	assert.Equal(t, "new.jpg", profile.ImageFile)
	require.NoError(t, mock.ExpectationsWereMet())

	// One stored thumbnail remains on disk.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, ".jpg", filepath.Ext(entries[0].Name()))
}

func TestUserService_UpdateAvatar_UserGone(t *testing.T) {
	svc, mock, store := newMockUserService(t)

	mock.ExpectQuery("SELECT image_file FROM users WHERE id").
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.UpdateAvatar(context.Background(), 99, pngBytes(t, 100, 100))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())

	// The freshly written file was rolled back.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUserService_UpdateAvatar_NotAnImage(t *testing.T) {
	svc, mock, _ := newMockUserService(t)

	_, err := svc.UpdateAvatar(context.Background(), 7, bytes.NewBufferString("not an image"))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
