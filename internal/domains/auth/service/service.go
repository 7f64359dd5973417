package service

import (
	"context"
	"fmt"
	"resa/config"
	"resa/infras/jwt"
	"resa/infras/otel"
	"resa/internal/domains/auth/model/dto"
	staffModel "resa/internal/domains/staff/model"
	staffRepo "resa/internal/domains/staff/repository"
	"resa/shared"
	"resa/shared/constant"
	gDto "resa/shared/dto"
	"resa/shared/failure"
	"resa/shared/password"
	"resa/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Auth interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
}

type serviceImpl struct {
	staffRepo  staffRepo.Staff
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(staffRepository staffRepo.Staff, cfg *config.Config, ot otel.Otel, jwtService jwt.JWT) Auth {
	return &serviceImpl{
		staffRepo:  staffRepository,
		cfg:        cfg,
		otel:       ot,
		jwtService: jwtService,
	}
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	emailFilter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    staffModel.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    req.Email,
				Table:    staffModel.TableName,
			},
		},
	}

	staff, err := s.staffRepo.Get(ctx, emailFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get staff account")

		return res, fmt.Errorf("failed to get staff account: %w", err)
	}

	if staff.ID == constant.Empty || !staff.Active {
		return res, failure.Unauthorized("invalid email or password") // nolint:wrapcheck
	}

	if err = password.Verify(req.Password, staff.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("failed login attempt")

		return res, failure.Unauthorized("invalid email or password") // nolint:wrapcheck
	}

	tokens, err := s.jwtService.GenerateTokenPair(staff.ID, staff.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate token pair")

		return res, fmt.Errorf("failed to generate token pair: %w", err)
	}

	lastLogin := timezone.Format(timezone.Now(), constant.DateFormat)
	updatedFields := map[string]any{
		staffModel.FieldLastLogin: lastLogin,
		constant.FieldModifiedAt:  timezone.Now(),
		constant.FieldModifiedBy:  staff.ID,
	}

	filter := shared.FilterByID(staff.ID, staffModel.FieldID, staffModel.TableName)
	if err := s.staffRepo.Update(ctx, updatedFields, filter); err != nil {
		// Login still succeeds; the stamp is best-effort.
		log.Error().Err(err).Msg("failed to stamp last login")
	}

	res.StaffID = staff.ID
	res.Email = staff.Email
	res.TokenPair = *tokens

	if staff.FullName != nil {
		res.FullName = *staff.FullName
	}

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	tokens, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token") // nolint:wrapcheck
	}

	res.TokenPair = *tokens

	return res, nil
}
