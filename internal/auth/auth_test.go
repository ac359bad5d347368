package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookcatalog/internal/platform/crypto"
	"bookcatalog/internal/user"
)

const secret = "test-secret-key"

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByUsername(ctx context.Context, username string) (user.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(user.User), args.Error(1)
}

func newUsers(t *testing.T) *mockUsers {
	hash, err := crypto.HashPassword("Secret123!")
	require.NoError(t, err)

	users := new(mockUsers)
	users.On("GetByUsername", mock.Anything, "alice").Return(user.User{ID: 7, Username: "alice", Password: hash}, nil)
	users.On("GetByUsername", mock.Anything, "ghost").Return(user.User{}, user.ErrNotFound)
	users.On("GetByUsername", mock.Anything, "broken").Return(user.User{}, errors.New("connection reset"))
	return users
}

func TestService_Login(t *testing.T) {
	svc := NewService(secret, time.Hour, newUsers(t))
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		token, expiresIn, err := svc.Login(ctx, "alice", "Secret123!")
		require.NoError(t, err)
		assert.Equal(t, 3600, expiresIn)

		claims, err := crypto.ParseToken(secret, token)
		require.NoError(t, err)
		id, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice", "nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ghost", "Secret123!")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("storage failure", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "broken", "Secret123!")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	h := NewHTTPHandler(NewService(secret, time.Hour, newUsers(t)), zap.NewNop())

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"ok", `{"username":"alice","password":"Secret123!"}`, http.StatusOK},
		{"bad password", `{"username":"alice","password":"x"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":""}`, http.StatusBadRequest},
		{"not json", `nope`, http.StatusBadRequest},
		{"storage failure", `{"username":"broken","password":"x"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			h.Login(w, r)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
