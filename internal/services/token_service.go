package services

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense-tracker/internal/config"
	"expense-tracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess = "access"

	bearerPrefix = "bearer "
	clockLeeway  = 30 * time.Second
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token is expired")
	ErrInvalidIssuer     = errors.New("invalid issuer")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrInvalidSubject    = errors.New("token subject is not a valid user id")
)

// TokenService verifies the RS256 bearer tokens that scope every expense
// request to a user. Issuing needs the private key and backs the
// development-only POST /api/v1/dev/token.
type TokenService struct {
	issuer     string
	duration   time.Duration
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	parser     *jwt.Parser
}

func NewTokenService(jwtConfig *config.JWTConfig) TokenServiceInterface {
	return &TokenService{
		issuer:     jwtConfig.Issuer,
		duration:   jwtConfig.AccessTokenDuration,
		privateKey: jwtConfig.PrivateKey,
		publicKey:  jwtConfig.PublicKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(jwtConfig.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockLeeway),
		),
	}
}

// GenerateAccessToken signs an access token whose subject is userID
func (ts *TokenService) GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error) {
	if userID == uuid.Nil {
		return "", time.Time{}, errors.New("user ID cannot be nil")
	}
	if ts.privateKey == nil {
		return "", time.Time{}, errors.New("no signing key configured")
	}

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(ts.duration)

	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    userID.String(),
		Email:     email,
		TokenType: TokenTypeAccess,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.privateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken checks signature, issuer, expiry and token type, and
// that the user id claim is a UUID
func (ts *TokenService) ValidateAccessToken(tokenString string) (*models.CustomClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	claims := &models.CustomClaims{}
	token, err := ts.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return ts.publicKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return nil, ErrInvalidIssuer
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case !token.Valid:
		return nil, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidSubject
	}

	return claims, nil
}

// ExtractTokenFromHeader returns the token of a "Bearer <token>" header; the scheme is case-insensitive
func (ts *TokenService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}
