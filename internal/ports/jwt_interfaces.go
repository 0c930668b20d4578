package ports

import (
	"context"
	"quote-web-server/internal/model"
	"quote-web-server/internal/security"
)

type JWTServiceInterface interface {
	GenerateAccessRefreshTokens(userUUID string) (*model.TokensPair, *model.RefreshToken, error)
	ValidateJWT(jwtTokenStr string, secretKey []byte) (*security.Claims, error)
}

type JWTRepositoryInterface interface {
	SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error
	MarkRefreshTokenUsedByUUID(ctx context.Context, refreshTokenUUID string) error
	FindByUUID(ctx context.Context, refreshTokenUUID string) (*model.RefreshToken, error)
}

type AuthenticationServiceInterface interface {
	Login(ctx context.Context, login, password, userAgent, ipAddress string) (*model.TokensPair, error)
	RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshTokenUUID string) error
}
