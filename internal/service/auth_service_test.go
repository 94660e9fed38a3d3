package service

import (
	"context"
	"errors"
	"testing"

	"pizza-maniac/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users   *MockUserRepository
	hasher  *MockHasher
	tokens  *MockTokenIssuer
	service AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  new(MockUserRepository),
		hasher: new(MockHasher),
		tokens: new(MockTokenIssuer),
	}
	f.service = NewAuthService(f.users, f.hasher, f.tokens, zerolog.Nop())
	return f
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success defaults role to User", func(t *testing.T) {
		f := newAuthFixture()
		var created *model.User
		f.users.On("GetByEmail", ctx, "alice@example.com").Return(nil, nil)
		f.hasher.On("Hash", "secret1").Return("hashed", nil)
		f.users.On("Create", ctx, mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*model.User) }).
			Return(nil)
		f.tokens.On("Issue", mock.AnythingOfType("*model.User")).Return("token-1", nil)

		resp, err := f.service.Register(ctx, &model.RegisterRequest{
			Name:     "Alice",
			Email:    "Alice@Example.com",
			Password: "secret1",
		})

		require.NoError(t, err)
		assert.Equal(t, "token-1", resp.Token)
		assert.Equal(t, model.RoleUser, resp.User.Role)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		require.NotNil(t, created)
		assert.Equal(t, "hashed", created.PasswordHash)
		assert.NotEqual(t, uuid.Nil, created.ID)
		f.users.AssertExpectations(t)
		f.hasher.AssertExpectations(t)
		f.tokens.AssertExpectations(t)
	})

	t.Run("Existing email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "alice@example.com").Return(&model.User{ID: uuid.New()}, nil)

		_, err := f.service.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, model.ErrUserExists)
		f.users.AssertNotCalled(t, "Create")
	})

	t.Run("Duplicate detected on insert", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "alice@example.com").Return(nil, nil)
		f.hasher.On("Hash", "secret1").Return("hashed", nil)
		f.users.On("Create", ctx, mock.Anything).Return(model.ErrUserExists)

		_, err := f.service.Register(ctx, &model.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, model.ErrUserExists)
		f.tokens.AssertNotCalled(t, "Issue")
	})

	t.Run("Validation", func(t *testing.T) {
		f := newAuthFixture()

		_, err := f.service.Register(ctx, &model.RegisterRequest{Name: "", Email: "nope", Password: "123", Role: "Root"})

		require.ErrorIs(t, err, model.ErrValidation)
		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Len(t, domainErr.Fields, 4)
		f.users.AssertNotCalled(t, "GetByEmail")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", PasswordHash: "hashed", Role: model.RoleAdmin}

	tests := []struct {
		name        string
		req         *model.LoginRequest
		setup       func(f *authFixture)
		expectedErr error
	}{
		{
			name: "Success",
			req:  &model.LoginRequest{Email: "admin@example.com", Password: "secret1"},
			setup: func(f *authFixture) {
				f.users.On("GetByEmail", ctx, "admin@example.com").Return(user, nil)
				f.hasher.On("Compare", "hashed", "secret1").Return(true, nil)
				f.tokens.On("Issue", user).Return("token-2", nil)
			},
		},
		{
			name: "Unknown email",
			req:  &model.LoginRequest{Email: "ghost@example.com", Password: "secret1"},
			setup: func(f *authFixture) {
				f.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)
			},
			expectedErr: model.ErrInvalidCredentials,
		},
		{
			name: "Wrong password",
			req:  &model.LoginRequest{Email: "admin@example.com", Password: "nope"},
			setup: func(f *authFixture) {
				f.users.On("GetByEmail", ctx, "admin@example.com").Return(user, nil)
				f.hasher.On("Compare", "hashed", "nope").Return(false, nil)
			},
			expectedErr: model.ErrInvalidCredentials,
		},
		{
			name: "Repository error",
			req:  &model.LoginRequest{Email: "admin@example.com", Password: "secret1"},
			setup: func(f *authFixture) {
				f.users.On("GetByEmail", ctx, "admin@example.com").Return(nil, errors.New("database error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			tt.setup(f)

			resp, err := f.service.Login(ctx, tt.req)

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, resp)
			case tt.name == "Repository error":
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "token-2", resp.Token)
				assert.Equal(t, model.RoleAdmin, resp.User.Role)
			}
			f.users.AssertExpectations(t)
			f.hasher.AssertExpectations(t)
			f.tokens.AssertExpectations(t)
		})
	}
}
