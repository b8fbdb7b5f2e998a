package handler

import (
	"context"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ExchangeToken(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

// MockCatalogService mocks the CatalogService interface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCategories(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, actor *models.User, name, slug string) (*models.Category, error) {
	args := m.Called(ctx, actor, name, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, actor *models.User, slug string) error {
	return m.Called(ctx, actor, slug).Error(0)
}

func (m *MockCatalogService) ListGenres(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]models.Genre), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogService) CreateGenre(ctx context.Context, actor *models.User, name, slug string) (*models.Genre, error) {
	args := m.Called(ctx, actor, name, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Genre), args.Error(1)
}

func (m *MockCatalogService) DeleteGenre(ctx context.Context, actor *models.User, slug string) error {
	return m.Called(ctx, actor, slug).Error(0)
}

// MockTitleService mocks the TitleService interface
type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, actor *models.User, in service.TitleInput) (*models.Title, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, actor *models.User, id int64, patch service.TitlePatch) (*models.Title, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, actor *models.User, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

// MockReviewService mocks the ReviewService interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Submit(ctx context.Context, actor *models.User, titleID int64, text string, score int) (*models.Review, error) {
	args := m.Called(ctx, actor, titleID, text, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Amend(ctx context.Context, actor *models.User, titleID, reviewID int64, patch service.ReviewPatch) (*models.Review, error) {
	args := m.Called(ctx, actor, titleID, reviewID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Withdraw(ctx context.Context, actor *models.User, titleID, reviewID int64) error {
	return m.Called(ctx, actor, titleID, reviewID).Error(0)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

// MockCommentService mocks the CommentService interface
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Post(ctx context.Context, actor *models.User, titleID, reviewID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, actor, titleID, reviewID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) Edit(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, actor, titleID, reviewID, commentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error {
	return m.Called(ctx, actor, titleID, reviewID, commentID).Error(0)
}

func (m *MockCommentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	args := m.Called(ctx, titleID, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	args := m.Called(ctx, titleID, reviewID, page, pageSize)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, actor *models.User, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, actor, search, page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Create(ctx context.Context, actor *models.User, in service.UserInput) (*models.User, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	args := m.Called(ctx, actor, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor *models.User, username string, patch service.UserPatch) (*models.User, error) {
	args := m.Called(ctx, actor, username, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actor *models.User, username string) error {
	return m.Called(ctx, actor, username).Error(0)
}

func (m *MockUserService) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateMe(ctx context.Context, actor *models.User, patch service.UserPatch) (*models.User, error) {
	args := m.Called(ctx, actor, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// fakeUsers resolves token subjects for the Authenticate middleware.
type fakeUsers map[string]*models.User

func (f fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
