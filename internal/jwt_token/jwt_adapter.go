package jwttoken

import (
	"cascade/internal/platform/middleware"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// JWTServiceAdapter narrows JWTService to the middleware validator interface,
// turning raw string claims into typed IDs so nothing downstream re-parses.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	companyID, err := id.ParseCompanyID(claims.CompanyID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return &middleware.JWTClaims{UserID: userID, CompanyID: companyID}, nil
}
