package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/accounts/internal/config"
	"github.com/mrlokans/accounts/internal/database"
	"github.com/mrlokans/accounts/internal/database/accounts"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db      *database.Database
	repo    *accounts.Repository
	service *Service
	session *SessionManager
	router  *gin.Engine
	auth    *AuthController
}

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionLifetime: time.Hour,
		BcryptCost:      bcrypt.MinCost,
		SecureCookies:   false,
	}
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestService(t *testing.T, cfg config.Auth) (*Service, *accounts.Repository) {
	t.Helper()

	repo := accounts.NewRepository(setupTestDB(t).DB)
	return NewService(repo, cfg), repo
}

// setupTestEnv wires the full auth surface the way the entrypoint does.
func setupTestEnv(t *testing.T, cfg config.Auth, csrfSecret []byte) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	repo := accounts.NewRepository(db.DB)
	svc := NewService(repo, cfg)

	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	var csrfMiddleware gin.HandlerFunc
	if csrfSecret != nil {
		csrfMiddleware = CSRFMiddleware(csrfSecret, cfg.SecureCookies)
	}

	controller := NewAuthController(svc, sm, nil, csrfMiddleware, cfg)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave(), NewMiddleware(svc, sm).LoadAccount())
	controller.RegisterRoutes(router)
	NewAdminController(svc, nil, cfg.AdminToken).RegisterRoutes(router)

	return &testEnv{
		db:      db,
		repo:    repo,
		service: svc,
		session: sm,
		router:  router,
		auth:    controller,
	}
}

// do sends a request and returns the recorder. A string body is sent verbatim.
func (e *testEnv) do(method, path string, body any, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		raw, _ = json.Marshal(b)
	}
	reader := bytes.NewReader(raw)

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// mergeCookies keeps the latest value of each cookie name.
func mergeCookies(existing []*http.Cookie, fresh []*http.Cookie) []*http.Cookie {
	byName := map[string]*http.Cookie{}
	var order []string
	for _, c := range append(existing, fresh...) {
		if _, ok := byName[c.Name]; !ok {
			order = append(order, c.Name)
		}
		byName[c.Name] = c
	}
	out := make([]*http.Cookie, 0, len(order))
	for _, name := range order {
		if c := byName[name]; c.MaxAge >= 0 && c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}
