package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signageflow/signageflow/internal/model"
)

const testSecret = "test-secret-not-for-production"

type fakeUsers struct {
	users map[int]*model.User
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func TestPasswordHashing(t *testing.T) {
	t.Run("hash verifies against the original", func(t *testing.T) {
		hash, err := HashPassword("hunter22")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter22", hash)
		assert.True(t, CheckPassword(hash, "hunter22"))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		hash, err := HashPassword("hunter22")
		require.NoError(t, err)
		assert.False(t, CheckPassword(hash, "hunter23"))
	})

	t.Run("garbage hash fails", func(t *testing.T) {
		assert.False(t, CheckPassword("not-a-bcrypt-hash", "hunter22"))
	})
}

func TestGenerateAndParseJWT(t *testing.T) {
	t.Run("round-trips the user id", func(t *testing.T) {
		token, err := GenerateJWT(42, testSecret)
		require.NoError(t, err)

		id, err := parseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token, err := GenerateJWT(42, testSecret)
		require.NoError(t, err)

		_, err = parseToken(token, "some-other-secret")
		assert.Error(t, err)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		_, err := parseToken("not.a.jwt", testSecret)
		assert.Error(t, err)
	})
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &fakeUsers{users: map[int]*model.User{
		42: {ID: 42, Email: "owner@example.com"},
	}}

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(JWTMiddleware(testSecret, users))
		r.GET("/me", func(c *gin.Context) {
			user, ok := GetCurrentUser(c)
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"email": user.Email})
		})
		return r
	}

	t.Run("valid bearer token resolves the user", func(t *testing.T) {
		token, err := GenerateJWT(42, testSecret)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		newRouter().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "owner@example.com")
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-bearer scheme is unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token for an unknown user is unauthorized", func(t *testing.T) {
		token, err := GenerateJWT(999, testSecret)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
