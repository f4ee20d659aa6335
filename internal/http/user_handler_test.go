package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tunenote/internal/domain"
	"tunenote/internal/repository"
	"tunenote/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) SetSpotifyTokens(_ context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.SpotifyAccessToken = accessToken
	user.SpotifyRefreshToken = refreshToken
	user.SpotifyTokenExpiresAt = &expiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) GetSpotifyTokens(_ context.Context, id string) (repository.SpotifyTokens, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return repository.SpotifyTokens{}, pgx.ErrNoRows
	}
	return repository.SpotifyTokens{
		AccessToken:  user.SpotifyAccessToken,
		RefreshToken: user.SpotifyRefreshToken,
		ExpiresAt:    user.SpotifyTokenExpiresAt,
	}, nil
}

func setupUserRouter(repo repository.UserRepository) (*gin.Engine, *service.SessionService) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	sessions := service.NewSessionService("secret", 24*time.Hour)
	userSvc := service.NewUserService(logger, repo)
	userH := NewUserHandler(logger, userSvc, sessions)

	r := gin.New()
	r.POST("/users", userH.CreateUser)
	r.POST("/users/login", userH.Login)
	r.GET("/users/me", SessionAuthMiddleware(sessions), userH.Me)
	return r, sessions
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Message
}

func TestUserHandler_CreateUser(t *testing.T) {
	r, _ := setupUserRouter(newMockUserRepo())

	rec := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"email":     "ada@example.com",
		"password":  "hunter22",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ID == "" {
		t.Fatalf("expected id in response: %s", rec.Body.String())
	}
}

func TestUserHandler_CreateUserMissingField(t *testing.T) {
	r, _ := setupUserRouter(newMockUserRepo())

	rec := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"email":    "ada@example.com",
		"password": "hunter22",
		"lastName": "Lovelace",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "firstName must be provided" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestUserHandler_CreateUserDuplicateEmail(t *testing.T) {
	r, _ := setupUserRouter(newMockUserRepo())

	body := gin.H{
		"email":     "ada@example.com",
		"password":  "hunter22",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}
	if rec := doJSON(t, r, http.MethodPost, "/users", body); rec.Code != http.StatusOK {
		t.Fatalf("first create: expected 200, got %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodPost, "/users", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "email 'ada@example.com' already exists" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestUserHandler_LoginSetsSessionCookie(t *testing.T) {
	repo := newMockUserRepo()
	r, sessions := setupUserRouter(repo)

	if rec := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"email":     "ada@example.com",
		"password":  "hunter22",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}); rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodPost, "/users/login", gin.H{
		"email":    "ada@example.com",
		"password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatalf("expected session cookie to be set")
	}

	userID, err := sessions.Verify(sessionCookie.Value)
	if err != nil {
		t.Fatalf("verify cookie token: %v", err)
	}
	user, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("cookie bound to %q, expected %q", userID, user.ID)
	}
}

func TestUserHandler_LoginMismatchMessagesAreIdentical(t *testing.T) {
	r, _ := setupUserRouter(newMockUserRepo())

	if rec := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"email":     "ada@example.com",
		"password":  "hunter22",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}); rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", rec.Code)
	}

	wrongPass := doJSON(t, r, http.MethodPost, "/users/login", gin.H{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	unknownEmail := doJSON(t, r, http.MethodPost, "/users/login", gin.H{
		"email":    "nobody@example.com",
		"password": "hunter22",
	})

	if wrongPass.Code != http.StatusBadRequest || unknownEmail.Code != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", wrongPass.Code, unknownEmail.Code)
	}
	wrongPassMsg := decodeMessage(t, wrongPass)
	unknownEmailMsg := decodeMessage(t, unknownEmail)
	if wrongPassMsg != unknownEmailMsg {
		t.Fatalf("mismatch messages differ: %q vs %q", wrongPassMsg, unknownEmailMsg)
	}
}

func TestUserHandler_MeReturnsProfile(t *testing.T) {
	repo := newMockUserRepo()
	r, sessions := setupUserRouter(repo)

	if rec := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"email":     "ada@example.com",
		"password":  "hunter22",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}); rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", rec.Code)
	}
	user, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	token, err := sessions.Issue(user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := doJSON(t, r, http.MethodGet, "/users/me", nil, &http.Cookie{Name: sessionCookieName, Value: token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data service.Profile `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ID != user.ID || resp.Data.FirstName != "Ada" || resp.Data.Email != "ada@example.com" {
		t.Fatalf("unexpected profile: %+v", resp.Data)
	}
	if resp.Data.SpotifyEnabled {
		t.Fatalf("expected spotify disabled")
	}
}

func TestUserHandler_MeRequiresSession(t *testing.T) {
	r, _ := setupUserRouter(newMockUserRepo())

	rec := doJSON(t, r, http.MethodGet, "/users/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
