package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/corexus/apiserver/internal/auth"
	"github.com/corexus/apiserver/internal/services"
	"github.com/corexus/apiserver/internal/store"
	"github.com/corexus/apiserver/types"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return []types.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = f.nextID
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *fakeUserRepo) {
	t.Helper()

	repo := newFakeUserRepo()
	userService := services.NewUserService(repo, nil)
	codec := auth.NewTokenCodec("test-secret", time.Minute)
	issuer := auth.NewIssuer(codec, repo)
	resolver := auth.NewResolver(codec, repo)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, codec, issuer, resolver)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, nil, RequireAuth(resolver))
	})
	return router, repo
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router http.Handler, email, password string) AuthResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    email,
		FullName: "Test User",
		Password: password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp
}

func TestRegisterLoginMe(t *testing.T) {
	router, _ := newTestRouter(t)

	registered := registerUser(t, router, "alice@example.com", "correct-horse")
	if registered.TokenType != "bearer" {
		t.Fatalf("expected token type bearer, got %q", registered.TokenType)
	}
	if registered.User.Email != "alice@example.com" || !registered.User.IsActive {
		t.Fatalf("unexpected registered user: %+v", registered.User)
	}

	rec := doJSON(t, router, http.MethodPost, "/auth/token", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var session auth.Session
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.TokenType != "bearer" || session.AccessToken == "" {
		t.Fatalf("unexpected session: %+v", session)
	}

	rec = doJSON(t, router, http.MethodGet, "/auth/me", session.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var me types.User
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "alice@example.com" {
		t.Fatalf("expected alice, got %+v", me)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t)
	registerUser(t, router, "alice@example.com", "correct-horse")

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "alice@example.com",
		FullName: "Alice Again",
		Password: "another-horse",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _ := newTestRouter(t)
	registerUser(t, router, "alice@example.com", "correct-horse")

	cases := []LoginRequest{
		{Email: "alice@example.com", Password: "wrong-horse"},
		{Email: "ghost@example.com", Password: "correct-horse"},
	}
	bodies := make([]string, 0, len(cases))
	for _, req := range cases {
		rec := doJSON(t, router, http.MethodPost, "/auth/token", "", req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("login %s: expected 401, got %d", req.Email, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Fatalf("login %s: expected bearer challenge header", req.Email)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("expected identical error bodies, got %q and %q", bodies[0], bodies[1])
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, header := range []string{"", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Fatalf("header %q: expected bearer challenge header", header)
		}
	}
}

func TestRequireAuthGarbageToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/auth/me", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestInactiveUserRejectedDistinctly(t *testing.T) {
	router, _ := newTestRouter(t)

	alice := registerUser(t, router, "alice@example.com", "correct-horse")
	bob := registerUser(t, router, "bob@example.com", "bobs-password")

	inactive := false
	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", bob.User.ID), alice.AccessToken, UpdateUserRequest{
		IsActive: &inactive,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate bob: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/auth/me", bob.AccessToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inactive me: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserCRUD(t *testing.T) {
	router, _ := newTestRouter(t)

	alice := registerUser(t, router, "alice@example.com", "correct-horse")
	bob := registerUser(t, router, "bob@example.com", "bobs-password")

	rec := doJSON(t, router, http.MethodGet, "/users", alice.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list UserListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2 || len(list.Items) != 2 {
		t.Fatalf("expected 2 users, got %+v", list)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d", bob.User.ID), alice.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	fullName := "Robert"
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", bob.User.ID), alice.AccessToken, UpdateUserRequest{
		FullName: &fullName,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated types.User
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.FullName != "Robert" {
		t.Fatalf("expected updated full name, got %+v", updated)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/users/%d", bob.User.ID), alice.AccessToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d", bob.User.ID), alice.AccessToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/users/999", alice.AccessToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: expected 404, got %d", rec.Code)
	}
}

func TestPasswordChangeInvalidatesOldPassword(t *testing.T) {
	router, _ := newTestRouter(t)
	alice := registerUser(t, router, "alice@example.com", "correct-horse")

	password := "new-horse"
	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", alice.User.ID), alice.AccessToken, UpdateUserRequest{
		Password: &password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("change password: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/token", "", LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/token", "", LoginRequest{Email: "alice@example.com", Password: "new-horse"})
	if rec.Code != http.StatusOK {
		t.Fatalf("new password: expected 200, got %d", rec.Code)
	}
}

func TestAvatarEndpointsWithoutStorage(t *testing.T) {
	router, _ := newTestRouter(t)
	alice := registerUser(t, router, "alice@example.com", "correct-horse")

	path := fmt.Sprintf("/users/%d/avatar", alice.User.ID)
	for _, method := range []string{http.MethodPut, http.MethodGet, http.MethodDelete} {
		rec := doJSON(t, router, method, path, alice.AccessToken, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s avatar: expected 503, got %d", method, rec.Code)
		}
	}
}
