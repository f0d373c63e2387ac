package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/directory"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/metrics"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/models"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/naming"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRouter builds the RPC surface on top of a seeded in-memory store.
func setupRouter(t *testing.T) (*gin.Engine, *naming.Resolver) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hash, err := password.Hash("bob-secret")
	require.NoError(t, err)
	user := &models.User{
		Username:     "bob",
		FullName:     "Bob Tester",
		Email:        "bob@example.com",
		PasswordHash: hash,
		Active:       true,
	}
	require.NoError(t, db.CreateUser(user))

	svcHash, err := password.Hash("service-secret")
	require.NoError(t, err)
	svc := &models.Service{
		Name:         "gitea",
		FullName:     "Gitea",
		PasswordHash: svcHash,
		Active:       true,
	}
	require.NoError(t, db.CreateService(svc))
	require.NoError(t, db.AddUserToService(user.ID, svc.ID))

	resolver := naming.NewResolver("")
	dir := directory.New(
		db,
		resolver,
		password.NewLockoutTracker(password.DefaultLockoutThreshold),
		metrics.NewNoopMetrics(),
	)
	h := NewProxyHandler(dir)

	r := gin.New()
	r.POST("/bind", h.Bind)
	r.POST("/search", h.Search)
	r.GET("/health", Health(db))
	return r, resolver
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBindEndpoint(t *testing.T) {
	r, resolver := setupRouter(t)

	t.Run("Allowed", func(t *testing.T) {
		w := postForm(r, "/bind", url.Values{
			"bindDN":           {resolver.UserDN("bob", "gitea")},
			"bindSimplePw":     {"bob-secret"},
			"connectionNumber": {"1"},
			"strand":           {""},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp BindResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Result)
		assert.Contains(t, resp.Strand, "user login allowed")
	})

	t.Run("Denied", func(t *testing.T) {
		w := postForm(r, "/bind", url.Values{
			"bindDN":       {resolver.UserDN("bob", "gitea")},
			"bindSimplePw": {"wrong"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp BindResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Result)
		assert.Contains(t, resp.Strand, "user login denied")
	})

	t.Run("StrandCarriedForward", func(t *testing.T) {
		w := postForm(r, "/bind", url.Values{
			"bindDN":       {resolver.ServiceDN("gitea")},
			"bindSimplePw": {"service-secret"},
			"strand":       {"open[3] -> "},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp BindResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Result)
		assert.True(t, strings.HasPrefix(resp.Strand, "open[3] -> "),
			"prior trail must be preserved, got %q", resp.Strand)
	})

	t.Run("MissingFields", func(t *testing.T) {
		// An empty bind DN is just an invalid DN, not a transport error.
		w := postForm(r, "/bind", url.Values{})
		require.Equal(t, http.StatusOK, w.Code)

		var resp BindResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Result)
		assert.Contains(t, resp.Strand, "invalid DN denied")
	})
}

func TestSearchEndpoint(t *testing.T) {
	r, resolver := setupRouter(t)

	t.Run("RootEntity", func(t *testing.T) {
		w := postForm(r, "/search", url.Values{
			"boundDN": {""},
			"BaseDN":  {""},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Result)
		require.Len(t, resp.Entities, 1)
		assert.Equal(t, "", resp.Entities[0].DN)
		assert.Equal(t, []string{"top"}, resp.Entities[0].Attributes["objectClass"])
	})

	t.Run("Users", func(t *testing.T) {
		w := postForm(r, "/search", url.Values{
			"boundDN": {resolver.ServiceDN("gitea")},
			"BaseDN":  {resolver.UsersDN("gitea")},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Result)
		require.Len(t, resp.Entities, 1)
		assert.Equal(t, resolver.UserDN("bob", "gitea"), resp.Entities[0].DN)
		assert.Equal(t, []string{"bob"}, resp.Entities[0].Attributes["uid"])
	})

	t.Run("DeniedHasEmptyEntities", func(t *testing.T) {
		w := postForm(r, "/search", url.Values{
			"boundDN": {""},
			"BaseDN":  {resolver.UsersDN("gitea")},
		})
		require.Equal(t, http.StatusOK, w.Code)

		// Entities must be a JSON array even when the search is denied.
		assert.Contains(t, w.Body.String(), `"Entities":[]`)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Result)
		assert.Contains(t, resp.Strand, "not bound denied")
	})
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
