package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	alice     = &models.User{ID: "u-alice", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	bob       = &models.User{ID: "u-bob", Username: "bob", Email: "bob@example.com", Role: models.RoleUser}
	moderator = &models.User{ID: "u-mod", Username: "mod", Email: "mod@example.com", Role: models.RoleModerator}
	admin     = &models.User{ID: "u-admin", Username: "root", Email: "root@example.com", Role: models.RoleAdmin}
)

// tokens maps the bearer strings used in tests to their users.
var tokens = map[string]*models.User{
	"alice-token": alice,
	"bob-token":   bob,
	"mod-token":   moderator,
	"admin-token": admin,
}

type testAPI struct {
	router   *gin.Engine
	auth     *MockAuthService
	catalog  *MockCatalogService
	titles   *MockTitleService
	reviews  *MockReviewService
	comments *MockCommentService
	users    *MockUserService
}

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

func newTestAPI(t *testing.T, opts ...func(*RouterOptions)) *testAPI {
	t.Helper()

	api := &testAPI{
		auth:     new(MockAuthService),
		catalog:  new(MockCatalogService),
		titles:   new(MockTitleService),
		reviews:  new(MockReviewService),
		comments: new(MockCommentService),
		users:    new(MockUserService),
	}

	loader := fakeUsers{}
	for tok, u := range tokens {
		loader[u.ID] = u
		api.auth.On("ValidateToken", tok).Return(&service.Claims{UserID: u.ID, Username: u.Username}, nil).Maybe()
	}
	api.auth.On("ValidateToken", mock.Anything).Return(nil, service.ErrInvalidToken).Maybe()

	ro := RouterOptions{
		Users:  loader,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(&ro)
	}

	api.router = NewRouter(Services{
		Auth:    api.auth,
		Catalog: api.catalog,
		Titles:  api.titles,
		Reviews: api.reviews,
		Comment: api.comments,
		Users:   api.users,
	}, ro)

	t.Cleanup(func() {
		api.catalog.AssertExpectations(t)
		api.titles.AssertExpectations(t)
		api.reviews.AssertExpectations(t)
		api.comments.AssertExpectations(t)
		api.users.AssertExpectations(t)
	})
	return api
}

// do sends a request with an optional JSON body and bearer token.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
