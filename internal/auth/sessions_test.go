package auth

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/accounts/internal/entities"
)

func TestSessionManager_Configuration(t *testing.T) {
	cfg := testAuthConfig()
	cfg.SecureCookies = true
	env := setupTestEnv(t, cfg, nil)

	assert.Equal(t, "session", env.session.Cookie.Name)
	assert.True(t, env.session.Cookie.HttpOnly)
	assert.True(t, env.session.Cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, env.session.Cookie.SameSite)
	assert.Equal(t, cfg.SessionLifetime, env.session.Lifetime)
}

func TestSessionManager_DataAndFlash(t *testing.T) {
	env := setupTestEnv(t, testAuthConfig(), nil)
	account := &entities.Account{ID: "acc-123", Email: "someone@example.com"}

	router := gin.New()
	router.Use(env.session.SessionLoadSave())
	router.POST("/login", func(c *gin.Context) {
		require.NoError(t, env.session.CreateSession(c.Request, account))
		env.session.PutFlash(c.Request, "SignIn Successful!")
		c.Status(http.StatusNoContent)
	})
	router.GET("/whoami", func(c *gin.Context) {
		data := env.session.GetSessionData(c.Request)
		if data == nil {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"account_id": data.AccountID,
			"email":      data.Email,
			"has_login":  !data.LoginAt.IsZero(),
			"flash":      env.session.PopFlash(c.Request),
		})
	})

	env.router = router

	w := env.do(http.MethodGet, "/whoami", nil, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/login", nil, nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	w = env.do(http.MethodGet, "/whoami", nil, cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, "acc-123", body["account_id"])
	assert.Equal(t, "someone@example.com", body["email"])
	assert.Equal(t, true, body["has_login"])
	assert.Equal(t, "SignIn Successful!", body["flash"])

	// The flash is shown once
	w = env.do(http.MethodGet, "/whoami", nil, cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decodeBody[map[string]any](t, w)["flash"])
}
