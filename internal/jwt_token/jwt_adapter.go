package jwttoken

import (
	"trustledger/internal/platform/middleware"
	id "trustledger/pkg/domain"
)

// JWTServiceAdapter bridges JWTService to the middleware's TokenValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.CallerClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	addr, err := id.ParseAddress(claims.Address)
	if err != nil {
		return nil, err
	}
	return &middleware.CallerClaims{Address: addr}, nil
}
