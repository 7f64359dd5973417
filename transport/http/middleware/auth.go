package middleware

import (
	"context"
	"errors"
	"net/http"
	"resa/infras/jwt"
	"resa/infras/otel"
	"resa/shared/constant"
	"resa/shared/failure"
	"resa/transport/http/response"

	"github.com/rs/zerolog/log"
)

// Auth guards routes that require a staff session.
type Auth interface {
	Auth(http.Handler) http.Handler
}

type authImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
}

func NewAuthMiddleware(jwtService jwt.JWT, otel otel.Otel) Auth {
	return &authImpl{
		jwtService: jwtService,
		otel:       otel,
	}
}

// Auth validates the bearer token and stores the staff identity on the
// request context.
func (m *authImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
		})

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == "" {
			err := failure.Unauthorized("Missing authorization header")
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			err := failure.Unauthorized("Invalid authorization header format")
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString, jwt.AccessToken)
		if err != nil {
			var message string

			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "Token has expired"
			case errors.Is(err, jwt.ErrInvalidToken):
				message = "Invalid token"
			case errors.Is(err, jwt.ErrInvalidClaim):
				message = "Invalid token claims"
			default:
				message = "Token validation failed"
			}

			err := failure.Unauthorized(message)
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		if claims.StaffID == "" || claims.Email == "" {
			log.Error().Msg("JWT claims: staff identity is empty")

			err := failure.Unauthorized("Invalid token claims")
			response.WithError(writer, err)
			scope.TraceError(err)

			return
		}

		ctx = context.WithValue(ctx, constant.ContextKeyStaffID, claims.StaffID)
		ctx = context.WithValue(ctx, constant.ContextKeyStaffEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
