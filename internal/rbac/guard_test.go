package rbac_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geepos/geepos/internal/rbac"
	"github.com/geepos/geepos/internal/shared"
	_ "github.com/geepos/geepos/testing"
)

func callGuarded(t *testing.T, path string, user *shared.SessionUser) *httptest.ResponseRecorder {
	t.Helper()
	guard := rbac.Guard{Service: rbac.NewService()}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`ok`))
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != nil {
		sess := &shared.Session{}
		sess.SetUser(*user)
		ctx := shared.ContextWithSession(context.Background(), sess)
		req = req.WithContext(ctx)
	}

	res := httptest.NewRecorder()
	guard.Require(path)(next).ServeHTTP(res, req)
	return res
}

func TestGuardNotLoggedIn(t *testing.T) {
	res := callGuarded(t, rbac.PathProducts, nil)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "401", body["result_code"])
	assert.Equal(t, "/login", body["redirect"])
}

func TestGuardDenied(t *testing.T) {
	user := &shared.SessionUser{EmpID: 7, Username: "malee", Status: "User1"}
	res := callGuarded(t, rbac.PathEmployees, user)

	require.Equal(t, http.StatusForbidden, res.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "403", body["result_code"])
	assert.Equal(t, "access denied", body["message"])
}

func TestGuardAllowed(t *testing.T) {
	user := &shared.SessionUser{EmpID: 7, Username: "malee", Status: "User1"}
	res := callGuarded(t, rbac.PathProducts, user)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body.String())
}

// A User1 account can reach exactly its four pages; everything else is a 403,
// and after logout the same paths all come back 401.
func TestGuardUser1Scenario(t *testing.T) {
	user := &shared.SessionUser{EmpID: 7, Username: "malee", Status: "User1"}
	allowed := []string{rbac.PathDashboard, rbac.PathProducts, rbac.PathCustomers, rbac.PathSales}
	denied := []string{rbac.PathEmployees, rbac.PathOrders, rbac.PathImports, rbac.PathExports, rbac.PathSuppliers}

	for _, path := range allowed {
		assert.Equal(t, http.StatusOK, callGuarded(t, path, user).Code, path)
	}
	for _, path := range denied {
		assert.Equal(t, http.StatusForbidden, callGuarded(t, path, user).Code, path)
	}
	for _, path := range append(allowed, denied...) {
		assert.Equal(t, http.StatusUnauthorized, callGuarded(t, path, nil).Code, path)
	}
}

func TestGuardUnknownRoleDeniedEverywhere(t *testing.T) {
	user := &shared.SessionUser{EmpID: 9, Username: "ghost", Status: "SuperUser"}
	for _, path := range rbac.NewService().Permissions(rbac.RoleAdmin) {
		assert.Equal(t, http.StatusForbidden, callGuarded(t, path, user).Code, path)
	}
}

func TestRequireSubmenu(t *testing.T) {
	guard := rbac.Guard{Service: rbac.NewService()}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	sess := &shared.Session{}
	sess.SetUser(shared.SessionUser{EmpID: 1, Username: "admin", Status: "Admin"})
	req := httptest.NewRequest(http.MethodGet, "/management", nil).
		WithContext(shared.ContextWithSession(context.Background(), sess))

	res := httptest.NewRecorder()
	guard.RequireSubmenu(rbac.SubmenuEmployees)(next).ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)

	sess2 := &shared.Session{}
	sess2.SetUser(shared.SessionUser{EmpID: 7, Username: "malee", Status: "User1"})
	req2 := httptest.NewRequest(http.MethodGet, "/management", nil).
		WithContext(shared.ContextWithSession(context.Background(), sess2))

	res2 := httptest.NewRecorder()
	guard.RequireSubmenu(rbac.SubmenuEmployees)(next).ServeHTTP(res2, req2)
	assert.Equal(t, http.StatusForbidden, res2.Code)
}
