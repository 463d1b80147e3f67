package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) (http.Handler, pgxmock.PgxPoolIface, *AuthService) {
	t.Helper()
	svc, mock, _ := newTestService(t)
	h := NewHandlers(svc)

	r := chi.NewRouter()
	r.Post("/auth/register", h.HandleRegister())
	r.Post("/auth/login", h.HandleLogin())
	r.Post("/auth/logout", h.HandleLogout())
	r.Post("/auth/reset_password", h.HandleRequestReset())
	r.Post("/auth/reset_password/{token}", h.HandleSubmitReset())
	return r, mock, svc
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestHandleRegister(t *testing.T) {
	router, mock, _ := newAuthRouter(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("amari", "amari@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "image_file", "created_at"}).
			AddRow(1, "default.jpg", time.Now()))

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"username":"amari","email":"amari@example.com","password":"hunter2"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "amari", got.Username)

	// The password hash never leaves the server.
	assert.NotContains(t, rec.Body.String(), "password")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRegister_MissingFields(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"username":"amari"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLogin_SetsSessionCookie(t *testing.T) {
	router, mock, svc := newAuthRouter(t)
	expectUserByEmail(mock, "amari@example.com", "hunter2")

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"email":"amari@example.com","password":"hunter2","next":"/account"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(24*time.Hour/time.Second), cookie.MaxAge)

	userID, err := svc.Tokens().Verify(cookie.Value, PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, 1, userID)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "/account", resp.RedirectTo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleLogin_OffsiteNextFallsBack(t *testing.T) {
	router, mock, _ := newAuthRouter(t)
	expectUserByEmail(mock, "amari@example.com", "hunter2")

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"email":"amari@example.com","password":"hunter2","next":"https://evil.example/phish"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, DefaultLanding, resp.RedirectTo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	router, mock, _ := newAuthRouter(t)
	expectUserByEmail(mock, "amari@example.com", "hunter2")

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"email":"amari@example.com","password":"wrong"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(t, rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleLogout_ClearsCookie(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestHandleSubmitReset_BadToken(t *testing.T) {
	router, mock, _ := newAuthRouter(t)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"password":"new-password"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/reset_password/garbage", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleSubmitReset(t *testing.T) {
	router, mock, svc := newAuthRouter(t)

	token, err := svc.Tokens().Issue(1, PurposeReset, 30*time.Minute)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE users SET password").
		WithArgs(pgxmock.AnyArg(), 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"password":"new-password"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/reset_password/"+token, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
