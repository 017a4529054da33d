package sales_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geepos/geepos/internal/sales"
	"github.com/geepos/geepos/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(t *testing.T, svc *sales.Service) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	sales.NewHandler(discardLogger(), svc).MountRoutes(r)
	return r
}

func authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser(shared.SessionUser{EmpID: 7, Username: "malee", Status: "User1"})
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestCreateHandlerRejectsBadItems(t *testing.T) {
	router := newRouter(t, sales.NewService(newFakeRepo(), catalog(), nopAudit{}, nil))

	cases := []struct {
		name string
		body string
	}{
		{"no items", `{"sale_date":"2026-01-10"}`},
		{"empty items", `{"items":[]}`},
		{"zero qty", `{"items":[{"proid":10,"qty":0}]}`},
		{"missing product", `{"items":[{"qty":2}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			router.ServeHTTP(res, authedRequest(t, http.MethodPost, "/", tc.body))
			assert.Equal(t, http.StatusBadRequest, res.Code, res.Body.String())
		})
	}
}

func TestCreateHandlerAcceptsValidBody(t *testing.T) {
	repo := newFakeRepo()
	router := newRouter(t, sales.NewService(repo, catalog(), nopAudit{}, nil))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, authedRequest(t, http.MethodPost, "/", `{"items":[{"proid":10,"qty":2}]}`))

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Len(t, repo.stored, 1)
}
