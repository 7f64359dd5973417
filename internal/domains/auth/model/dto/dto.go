package dto

import "resa/infras/jwt"

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	StaffID  string `json:"staff_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	jwt.TokenPair
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse struct {
	jwt.TokenPair
}
