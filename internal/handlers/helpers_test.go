package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/0xMishra/social-media-backend/internal/auth"
	"github.com/0xMishra/social-media-backend/internal/models"
	"github.com/0xMishra/social-media-backend/internal/posts"
	"github.com/0xMishra/social-media-backend/internal/repositories"
	"github.com/0xMishra/social-media-backend/internal/storage"
	"github.com/0xMishra/social-media-backend/internal/validation"
)

// countingUserStore records how often the store is reached.
type countingUserStore struct {
	UserStore
	calls atomic.Int32
}

func (c *countingUserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	c.calls.Add(1)
	return c.UserStore.Create(ctx, user)
}

func (c *countingUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	c.calls.Add(1)
	return c.UserStore.FindByEmail(ctx, email)
}

type stubUploader struct{}

func (stubUploader) PresignUpload(_ context.Context, userID, contentType string) (storage.Upload, error) {
	key, err := storage.ImageKey(userID, contentType)
	if err != nil {
		return storage.Upload{}, err
	}
	return storage.Upload{
		UploadURL: "https://uploads.example.com/" + key + "?signature=abc",
		Method:    http.MethodPut,
		ImageURL:  "https://cdn.example.com/" + key,
	}, nil
}

type testAPI struct {
	handler http.Handler
	store   *repositories.MemoryStore
	users   *countingUserStore
	issuer  *auth.TokenIssuer
}

type apiOption func(*Dependencies)

func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()

	store := repositories.NewMemoryStore()
	issuer, err := auth.NewTokenIssuer("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	users := &countingUserStore{UserStore: store.Users()}

	deps := Dependencies{
		Users:     users,
		Passwords: auth.NewHasher(bcrypt.MinCost),
		Sessions:  issuer,
		Resolver:  auth.Resolver{Tokens: issuer, Users: store.Users()},
		Posts:     posts.NewService(store.Posts()),
		Validator: validation.New(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)

	return &testAPI{handler: mux, store: store, users: users, issuer: issuer}
}

func (a *testAPI) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns its session cookie and stored record.
func (a *testAPI) signup(t *testing.T, name, email string) (*http.Cookie, models.User) {
	t.Helper()
	body := `{"name":"` + name + `","email":"` + email + `","password":"password123"}`
	rec := a.do(t, http.MethodPost, "/api/v1/user/signup", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: expected 201 got %d: %s", email, rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	user, err := a.store.Users().FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("find signed up user: %v", err)
	}
	return &http.Cookie{Name: cookie.Name, Value: cookie.Value}, user
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatalf("expected %s cookie in response", auth.SessionCookie)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
