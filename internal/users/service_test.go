package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"energienachweise/marketplace-backend/internal/auth"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) ListUnverifiedExperts(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) SearchVerifiedExperts(ctx context.Context, fachbereich string, limit int) ([]User, error) {
	args := m.Called(ctx, fachbereich, limit)
	return args.Get(0).([]User), args.Error(1)
}

func TestRegisterCustomer(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "kunde@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*users.User")).Return(nil)

	user, err := service.RegisterCustomer(ctx, RegisterCustomerRequest{
		Email:    "kunde@example.com",
		Password: "supersecret",
	})

	require.NoError(t, err)
	assert.Equal(t, auth.RoleKunde, user.Role)
	assert.True(t, user.IsVerified)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	assert.True(t, auth.CheckPassword("supersecret", user.PasswordHash))

	mockRepo.AssertExpectations(t)
}

func TestRegisterCustomerDuplicateEmail(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "kunde@example.com").Return(&User{Email: "kunde@example.com"}, nil)

	_, err := service.RegisterCustomer(ctx, RegisterCustomerRequest{
		Email:    "kunde@example.com",
		Password: "supersecret",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterExpertStartsUnverified(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "experte@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*users.User")).Return(nil)

	user, err := service.RegisterExpert(ctx, RegisterExpertRequest{
		Email:        "experte@example.com",
		Password:     "supersecret",
		Personentyp:  PersonentypFirma,
		Fachbereiche: []string{"Heizung", "Wärmedämmung"},
	})

	require.NoError(t, err)
	assert.Equal(t, auth.RoleExperte, user.Role)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "Heizung,Wärmedämmung", user.Fachbereiche)
	assert.Equal(t, []string{"Heizung", "Wärmedämmung"}, user.Out().Fachbereiche)
}

func TestVerifyExpert(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	expert := &User{ID: uuid.New(), Role: auth.RoleExperte, IsVerified: false}
	mockRepo.On("FindByID", ctx, expert.ID).Return(expert, nil)
	mockRepo.On("Save", ctx, expert).Return(nil)

	verified, err := service.VerifyExpert(ctx, expert.ID)

	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	mockRepo.AssertExpectations(t)
}

func TestVerifyExpertNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	missing := uuid.New()
	mockRepo.On("FindByID", ctx, missing).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.VerifyExpert(ctx, missing)
	assert.ErrorIs(t, err, ErrExpertNotFound)

	// A customer id is reported the same way as a missing one.
	kunde := &User{ID: uuid.New(), Role: auth.RoleKunde}
	mockRepo.On("FindByID", ctx, kunde.ID).Return(kunde, nil)

	_, err = service.VerifyExpert(ctx, kunde.ID)
	assert.ErrorIs(t, err, ErrExpertNotFound)
}

func TestSearchExpertsClampsLimit(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("SearchVerifiedExperts", ctx, "Heizung", 50).Return([]User{}, nil).Once()
	_, err := service.SearchExperts(ctx, "Heizung", 0)
	require.NoError(t, err)

	mockRepo.On("SearchVerifiedExperts", ctx, "", 200).Return([]User{}, nil).Once()
	_, err = service.SearchExperts(ctx, "", 1000)
	require.NoError(t, err)

	mockRepo.On("SearchVerifiedExperts", ctx, "", 7).Return([]User{}, nil).Once()
	_, err = service.SearchExperts(ctx, "", 7)
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestIsVerifiedExpert(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	verified := &User{ID: uuid.New(), Role: auth.RoleExperte, IsVerified: true}
	pending := &User{ID: uuid.New(), Role: auth.RoleExperte, IsVerified: false}
	kunde := &User{ID: uuid.New(), Role: auth.RoleKunde, IsVerified: true}
	missing := uuid.New()

	mockRepo.On("FindByID", ctx, verified.ID).Return(verified, nil)
	mockRepo.On("FindByID", ctx, pending.ID).Return(pending, nil)
	mockRepo.On("FindByID", ctx, kunde.ID).Return(kunde, nil)
	mockRepo.On("FindByID", ctx, missing).Return(nil, gorm.ErrRecordNotFound)

	ok, err := service.IsVerifiedExpert(ctx, verified.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, id := range []uuid.UUID{pending.ID, kunde.ID, missing} {
		ok, err := service.IsVerifiedExpert(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestPrincipalByID(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	user := &User{ID: uuid.New(), Role: auth.RoleExperte, IsVerified: false}
	mockRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	principal, err := service.PrincipalByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{ID: user.ID, Role: auth.RoleExperte, IsVerified: false}, principal)

	missing := uuid.New()
	mockRepo.On("FindByID", ctx, missing).Return(nil, gorm.ErrRecordNotFound)
	_, err = service.PrincipalByID(ctx, missing)
	assert.ErrorIs(t, err, auth.ErrUnknownPrincipal)
}
