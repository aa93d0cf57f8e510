package usecase

import (
	"testing"

	"inkwell/internal/entity"
	"inkwell/internal/repo/persistent"
	"inkwell/pkg/jwt"
	"inkwell/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of persistent.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

var _ persistent.UserRepository = (*MockUserRepository)(nil)

func newAuthUseCase(repo persistent.UserRepository) AuthUseCase {
	return NewAuthUseCase(repo, jwt.NewService("test-secret"), logger.New())
}

func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	uc := newAuthUseCase(mockRepo)

	mockRepo.On("GetByEmail", "new@example.com").Return(nil, persistent.ErrNotFound)
	mockRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		user := args.Get(0).(*entity.User)
		user.ID = "user-1"
	}).Return(nil)

	user, token, err := uc.Register("New User", "new@example.com", "password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", user.ID)
	assert.Empty(t, user.Password)
	mockRepo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	uc := newAuthUseCase(mockRepo)

	mockRepo.On("GetByEmail", "taken@example.com").Return(&entity.User{ID: "user-1"}, nil)

	_, _, err := uc.Register("Someone", "taken@example.com", "password123")

	assert.ErrorIs(t, err, ErrEmailTaken)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	uc := newAuthUseCase(mockRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockRepo.On("GetByEmail", "user@example.com").Return(&entity.User{
		ID:       "user-1",
		Email:    "user@example.com",
		Password: string(hashed),
	}, nil)

	user, token, err := uc.Login("user@example.com", "password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", user.ID)
	assert.Empty(t, user.Password)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	uc := newAuthUseCase(mockRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockRepo.On("GetByEmail", "user@example.com").Return(&entity.User{
		ID:       "user-1",
		Password: string(hashed),
	}, nil)

	_, _, err := uc.Login("user@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	uc := newAuthUseCase(mockRepo)

	mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, persistent.ErrNotFound)

	_, _, err := uc.Login("nobody@example.com", "password123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
