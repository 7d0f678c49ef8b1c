package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DELEBINITZ/user-auth-service/internal/auth"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/provider"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/resolver"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/session"
	"github.com/DELEBINITZ/user-auth-service/internal/auth/token"
	"github.com/DELEBINITZ/user-auth-service/internal/middleware"
	"github.com/DELEBINITZ/user-auth-service/internal/user"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr, err := token.NewManager(token.Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "test",
	})
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	store := user.NewMemStore()
	svc := auth.NewService(store, session.NewUserStore(store), mgr, nil)
	h := NewHandler(svc, provider.NewRegistry(), resolver.NewStoreResolver(store))

	r := gin.New()
	h.RegisterRoutes(r, middleware.GinRequireAuth(middleware.NewAuthMiddleware(svc)))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registerAna(t *testing.T, r *gin.Engine) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"fullname": "Ana", "email": "ana@x.com", "username": "ana", "password": "p@ssword1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}
}

func loginAna(t *testing.T, r *gin.Engine) (access, refresh string) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"identifier": "ana", "password": "p@ssword1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken, resp.RefreshToken
}

func TestRegisterEndpoint(t *testing.T) {
	r := newTestRouter(t)

	registerAna(t, r)

	// Response must carry the sanitized projection only.
	rec := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"fullname": "Bob", "email": "bob@x.com", "username": "bob", "password": "p@ssword1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) ||
		bytes.Contains(rec.Body.Bytes(), []byte("refresh")) {
		t.Errorf("response leaks credential material: %s", rec.Body)
	}

	// Duplicate username conflicts.
	rec = doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"fullname": "Ana Two", "email": "other@x.com", "username": "ana", "password": "p@ssword1",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// Missing fields are a bad request.
	rec = doJSON(t, r, http.MethodPost, "/auth/register", gin.H{"username": "x"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)

	access, refresh := loginAna(t, r)
	if access == "" || refresh == "" {
		t.Fatal("login returned empty tokens")
	}

	rec := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"identifier": "ana", "password": "wrong-password",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"identifier": "nobody", "password": "p@ssword1",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", rec.Code)
	}
}

func TestLoginSetsHTTPOnlyCookies(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)

	rec := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"identifier": "ana", "password": "p@ssword1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	names := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = true
		if !ck.HttpOnly {
			t.Errorf("cookie %s is not httpOnly", ck.Name)
		}
	}
	if !names["accessToken"] || !names["refreshToken"] {
		t.Errorf("token cookies missing: %v", names)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)
	_, refresh := loginAna(t, r)

	rec := doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body)
	}

	// The consumed token is rejected on replay.
	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("replay status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing token status = %d, want 400", rec.Code)
	}
}

func TestRefreshEndpointReadsCookie(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)
	_, refresh := loginAna(t, r)

	rec := doJSON(t, r, http.MethodPost, "/auth/refresh", nil, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	})
	if rec.Code != http.StatusOK {
		t.Errorf("cookie refresh status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestProtectedEndpoints(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)
	access, _ := loginAna(t, r)

	rec := doJSON(t, r, http.MethodGet, "/users/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /users/me status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/users/me", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("/users/me status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Username != "ana" {
		t.Errorf("username = %q, want ana", resp.User.Username)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)
	access, refresh := loginAna(t, r)

	rec := doJSON(t, r, http.MethodPost, "/auth/logout", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}

	// The session is gone; the refresh token no longer rotates.
	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout status = %d, want 401", rec.Code)
	}

	// The access token stays valid until expiry; logout only kills the
	// refresh slot.
	rec = doJSON(t, r, http.MethodGet, "/users/me", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Errorf("/users/me after logout status = %d, want 200", rec.Code)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)
	access, _ := loginAna(t, r)

	withAuth := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	rec := doJSON(t, r, http.MethodPost, "/users/change-password", gin.H{
		"current_password": "wrong", "new_password": "n3w-p@ssword",
	}, withAuth)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong current status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/users/change-password", gin.H{
		"current_password": "p@ssword1", "new_password": "n3w-p@ssword",
	}, withAuth)
	if rec.Code != http.StatusOK {
		t.Fatalf("change password status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"identifier": "ana", "password": "n3w-p@ssword",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", rec.Code)
	}
}

func TestUpdateAccountEndpoint(t *testing.T) {
	r := newTestRouter(t)
	registerAna(t, r)
	access, _ := loginAna(t, r)

	rec := doJSON(t, r, http.MethodPatch, "/users/me", gin.H{"bio": "hello"}, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		User struct {
			Bio string `json:"bio"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Bio != "hello" {
		t.Errorf("bio = %q", resp.User.Bio)
	}

	rec = doJSON(t, r, http.MethodPatch, "/users/me", gin.H{}, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty update status = %d, want 400", rec.Code)
	}
}

func TestOAuthLoginUnknownProvider(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/oauth/login/unknown", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown provider status = %d, want 400", rec.Code)
	}
}
