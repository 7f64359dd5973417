package auth

import (
	"net/http"
	"resa/infras/otel"
	"resa/internal/domains/auth/model/dto"
	"resa/internal/domains/auth/service"
	"resa/shared/constant"
	"resa/shared/validator"
	"resa/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/auth", func(routerGroup chi.Router) {
		routerGroup.Post("/login", handler.Login)
		routerGroup.Post("/refresh", handler.RefreshToken)
	})
}

// Login authenticates a staff member and issues a token pair.
// @Summary Staff login
// @Description Authenticate with email and password to receive a token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} response.Data[dto.LoginResponse] "Token pair"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	var req dto.LoginRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Login(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to login")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Staff logged in successfully")

	response.WithJSON(writer, http.StatusOK, res)
}

// RefreshToken exchanges a refresh token for a new token pair.
// @Summary Refresh tokens
// @Description Exchange a valid refresh token for a new token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Data[dto.RefreshTokenResponse] "New token pair"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/refresh [post]
func (handler *Handler) RefreshToken(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefreshToken")
	defer scope.End()

	var req dto.RefreshTokenRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.RefreshToken(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to refresh token")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Token refreshed successfully")

	response.WithJSON(writer, http.StatusOK, res)
}
