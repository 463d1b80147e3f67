package innates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/auth"
)

// stubService satisfies Service with canned responses per method.
type stubService struct {
	createFn      func(ctx context.Context, ownerID int, req NewInnateRequest) (*Innate, error)
	getByIDFn     func(ctx context.Context, id int) (*Innate, error)
	updateFn      func(ctx context.Context, id, principalID int, req UpdateInnateRequest) (*Innate, error)
	deleteFn      func(ctx context.Context, id, principalID int) error
	listPageFn    func(ctx context.Context, page, perPage int) (*PaginatedInnatesResponse, error)
	listByOwnerFn func(ctx context.Context, username string, page, perPage int) (*PaginatedInnatesResponse, error)
}

func (s *stubService) Create(ctx context.Context, ownerID int, req NewInnateRequest) (*Innate, error) {
	return s.createFn(ctx, ownerID, req)
}

func (s *stubService) GetByID(ctx context.Context, id int) (*Innate, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubService) Update(ctx context.Context, id, principalID int, req UpdateInnateRequest) (*Innate, error) {
	return s.updateFn(ctx, id, principalID, req)
}

func (s *stubService) Delete(ctx context.Context, id, principalID int) error {
	return s.deleteFn(ctx, id, principalID)
}

func (s *stubService) ListPage(ctx context.Context, page, perPage int) (*PaginatedInnatesResponse, error) {
	return s.listPageFn(ctx, page, perPage)
}

func (s *stubService) ListByOwner(ctx context.Context, username string, page, perPage int) (*PaginatedInnatesResponse, error) {
	return s.listByOwnerFn(ctx, username, page, perPage)
}

// newRouter mounts the innate routes the way main does, with a middleware
// that injects userID as the authenticated principal (0 means anonymous).
func newRouter(svc Service, userID int) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != auth.AnonymousID {
				req = req.WithContext(auth.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/v1/innates", NewHandler(svc).RegisterRoutes)
	return r
}

func TestHandler_Create(t *testing.T) {
	svc := &stubService{
		createFn: func(_ context.Context, ownerID int, req NewInnateRequest) (*Innate, error) {
			return &Innate{ID: 1, Title: req.Title, Innated: req.Innated, OwnerID: ownerID, OwnerUsername: "amari", CreatedAt: time.Now()}, nil
		},
	}
	router := newRouter(svc, 7)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"First","innated":"body"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/innates", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got Innate
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 7, got.OwnerID)
	assert.Equal(t, "First", got.Title)
}

func TestHandler_Create_Anonymous(t *testing.T) {
	router := newRouter(&stubService{}, auth.AnonymousID)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"First","innated":"body"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/innates", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Create_MissingFields(t *testing.T) {
	router := newRouter(&stubService{}, 7)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"","innated":""}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/innates", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Get_NotFound(t *testing.T) {
	svc := &stubService{
		getByIDFn: func(_ context.Context, id int) (*Innate, error) {
			return nil, apperror.NewNotFoundError("innate 99 not found", nil)
		},
	}
	router := newRouter(svc, auth.AnonymousID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/innates/99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Update_Forbidden(t *testing.T) {
	svc := &stubService{
		updateFn: func(_ context.Context, id, principalID int, _ UpdateInnateRequest) (*Innate, error) {
			return nil, apperror.NewUnauthorizedError("you do not own this innate", nil)
		},
	}
	router := newRouter(svc, 9)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"x","innated":"y"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/innates/1", body))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	var gotID, gotPrincipal int
	svc := &stubService{
		deleteFn: func(_ context.Context, id, principalID int) error {
			gotID, gotPrincipal = id, principalID
			return nil
		},
	}
	router := newRouter(svc, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/innates/3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, gotID)
	assert.Equal(t, 7, gotPrincipal)
}

func TestHandler_List_PassesPaging(t *testing.T) {
	var gotPage, gotPerPage int
	svc := &stubService{
		listPageFn: func(_ context.Context, page, perPage int) (*PaginatedInnatesResponse, error) {
			gotPage, gotPerPage = page, perPage
			return &PaginatedInnatesResponse{Innates: []Innate{}, Page: page, PerPage: perPage}, nil
		},
	}
	router := newRouter(svc, auth.AnonymousID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/innates?page=3&per_page=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, gotPage)
	assert.Equal(t, 5, gotPerPage)
}

func TestHandler_BadID(t *testing.T) {
	router := newRouter(&stubService{}, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/innates/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
