package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"resa/config"
	"resa/infras/jwt"
	jwtMocks "resa/infras/jwt/mocks"
	"resa/infras/otel/mocks"
	"resa/internal/domains/auth/model/dto"
	"resa/internal/domains/auth/service"
	staffMocks "resa/internal/domains/staff/mocks"
	staffModel "resa/internal/domains/staff/model"
)

// bcrypt hash of "password" with cost 10.
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

func newService(t *testing.T) (service.Auth, *staffMocks.MockStaff, *jwtMocks.MockJWT) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockStaff := staffMocks.NewMockStaff(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)

	svc := service.New(mockStaff, &config.Config{}, mocks.NewOtel(), mockJWT)

	return svc, mockStaff, mockJWT
}

func activeStaff() staffModel.Staff {
	fullName := "Maria Santos"

	return staffModel.Staff{
		ID:       "staff-id-123",
		Email:    "maria@example.com",
		Password: passwordHash,
		FullName: &fullName,
		Active:   true,
	}
}

func TestAuthService_Login(t *testing.T) {
	tokens := &jwt.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT)
		wantErr   bool
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: "maria@example.com", Password: "password"},
			setupMock: func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT) {
				mockStaff.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeStaff(), nil)

				mockJWT.EXPECT().
					GenerateTokenPair("staff-id-123", "maria@example.com").
					Return(tokens, nil)

				mockStaff.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@example.com", Password: "password"},
			setupMock: func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT) {
				mockStaff.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(staffModel.Staff{}, nil)
			},
			wantErr: true,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "maria@example.com", Password: "not-the-password"},
			setupMock: func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT) {
				mockStaff.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeStaff(), nil)
			},
			wantErr: true,
		},
		{
			name: "deactivated account",
			req:  dto.LoginRequest{Email: "maria@example.com", Password: "password"},
			setupMock: func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT) {
				staff := activeStaff()
				staff.Active = false

				mockStaff.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(staff, nil)
			},
			wantErr: true,
		},
		{
			name: "repository failure",
			req:  dto.LoginRequest{Email: "maria@example.com", Password: "password"},
			setupMock: func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT) {
				mockStaff.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(staffModel.Staff{}, errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name: "token generation failure",
			req:  dto.LoginRequest{Email: "maria@example.com", Password: "password"},
			setupMock: func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT) {
				mockStaff.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeStaff(), nil)

				mockJWT.EXPECT().
					GenerateTokenPair("staff-id-123", "maria@example.com").
					Return(nil, errors.New("signing failed"))
			},
			wantErr: true,
		},
		{
			name: "login survives a failed last-login stamp",
			req:  dto.LoginRequest{Email: "maria@example.com", Password: "password"},
			setupMock: func(mockStaff *staffMocks.MockStaff, mockJWT *jwtMocks.MockJWT) {
				mockStaff.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeStaff(), nil)

				mockJWT.EXPECT().
					GenerateTokenPair("staff-id-123", "maria@example.com").
					Return(tokens, nil)

				mockStaff.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("db down"))
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockStaff, mockJWT := newService(t)
			tt.setupMock(mockStaff, mockJWT)

			res, err := svc.Login(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "staff-id-123", res.StaffID)
			assert.Equal(t, "maria@example.com", res.Email)
			assert.Equal(t, "Maria Santos", res.FullName)
			assert.Equal(t, "access-token", res.AccessToken)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("returns a fresh token pair", func(t *testing.T) {
		svc, _, mockJWT := newService(t)

		mockJWT.EXPECT().
			RefreshTokens("old-refresh-token").
			Return(&jwt.TokenPair{
				AccessToken:  "new-access-token",
				RefreshToken: "new-refresh-token",
				TokenType:    "Bearer",
				ExpiresIn:    900,
			}, nil)

		res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "old-refresh-token"})

		assert.NoError(t, err)
		assert.Equal(t, "new-access-token", res.AccessToken)
		assert.Equal(t, "new-refresh-token", res.RefreshToken)
	})

	t.Run("rejects an invalid refresh token", func(t *testing.T) {
		svc, _, mockJWT := newService(t)

		mockJWT.EXPECT().
			RefreshTokens("bogus").
			Return(nil, errors.New("token expired"))

		_, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "bogus"})
		assert.Error(t, err)
	})
}
