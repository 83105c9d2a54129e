package services

import (
	"crypto/rsa"
	"testing"
	"time"

	"expense-tracker/internal/config"
	"expense-tracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const testIssuer = "expense-tracker-test"

type TokenServiceTestSuite struct {
	suite.Suite
	key     *rsa.PrivateKey
	service TokenServiceInterface
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (s *TokenServiceTestSuite) SetupTest() {
	private, _, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)
	s.key = private
	s.service = s.withKey(private, testIssuer, time.Hour)
}

func (s *TokenServiceTestSuite) withKey(key *rsa.PrivateKey, issuer string, ttl time.Duration) TokenServiceInterface {
	return NewTokenService(&config.JWTConfig{
		PrivateKey:          key,
		PublicKey:           &key.PublicKey,
		Issuer:              issuer,
		AccessTokenDuration: ttl,
	})
}

func (s *TokenServiceTestSuite) sign(method jwt.SigningMethod, key interface{}, userID, tokenType string) string {
	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    userID,
		TokenType: tokenType,
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	s.Require().NoError(err)
	return token
}

func (s *TokenServiceTestSuite) TestRoundTrip() {
	userID := uuid.New()

	token, expiresAt, err := s.service.GenerateAccessToken(userID, "priya@example.com")
	s.Require().NoError(err)
	s.WithinDuration(time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := s.service.ValidateAccessToken(token)
	s.Require().NoError(err)
	s.Equal(userID.String(), claims.UserID)
	s.Equal(userID.String(), claims.Subject)
	s.Equal("priya@example.com", claims.Email)
	s.Equal(TokenTypeAccess, claims.TokenType)
	s.Equal(testIssuer, claims.Issuer)
	s.NotEmpty(claims.ID)
}

func (s *TokenServiceTestSuite) TestGenerate_Refused() {
	_, _, err := s.service.GenerateAccessToken(uuid.Nil, "")
	s.ErrorContains(err, "user ID cannot be nil")

	verifyOnly := NewTokenService(&config.JWTConfig{PublicKey: &s.key.PublicKey, Issuer: testIssuer})
	_, _, err = verifyOnly.GenerateAccessToken(uuid.New(), "")
	s.ErrorContains(err, "no signing key configured")
}

func (s *TokenServiceTestSuite) TestVerifyOnlyServiceAcceptsTokens() {
	token, _, err := s.service.GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)

	verifyOnly := NewTokenService(&config.JWTConfig{PublicKey: &s.key.PublicKey, Issuer: testIssuer})
	_, err = verifyOnly.ValidateAccessToken(token)

	s.NoError(err)
}

func (s *TokenServiceTestSuite) TestExpiryWithinLeewayIsAccepted() {
	recent := s.withKey(s.key, testIssuer, -10*time.Second)
	token, _, err := recent.GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)

	_, err = recent.ValidateAccessToken(token)

	s.NoError(err)
}

func (s *TokenServiceTestSuite) TestValidate_Rejections() {
	otherKey, _, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	expired, _, err := s.withKey(s.key, testIssuer, -time.Minute).GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)
	foreignIssuer, _, err := s.withKey(s.key, "someone-else", time.Hour).GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)
	foreignKey, _, err := s.withKey(otherKey, testIssuer, time.Hour).GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)

	testCases := []struct {
		name  string
		token string
		err   error
	}{
		{"empty", "", ErrEmptyToken},
		{"garbage", "invalid.token.format", ErrInvalidToken},
		{"expired", expired, ErrExpiredToken},
		{"foreign issuer", foreignIssuer, ErrInvalidIssuer},
		{"foreign key", foreignKey, ErrInvalidToken},
		{"hmac", s.sign(jwt.SigningMethodHS256, []byte("shared-secret"), uuid.NewString(), TokenTypeAccess), ErrInvalidToken},
		{"refresh type", s.sign(jwt.SigningMethodRS256, s.key, uuid.NewString(), "refresh"), ErrInvalidTokenType},
		{"non-uuid subject", s.sign(jwt.SigningMethodRS256, s.key, "not-a-uuid", TokenTypeAccess), ErrInvalidSubject},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			claims, err := s.service.ValidateAccessToken(tc.token)
			s.ErrorIs(err, tc.err)
			s.Nil(claims)
		})
	}
}

func (s *TokenServiceTestSuite) TestExtractTokenFromHeader() {
	for _, header := range []string{"Bearer abc.def.ghi", "bearer abc.def.ghi", "BEARER   abc.def.ghi "} {
		token, err := s.service.ExtractTokenFromHeader(header)
		s.NoError(err, header)
		s.Equal("abc.def.ghi", token, header)
	}

	for _, header := range []string{"", "Bearer", "Bearer ", "abc.def.ghi", "Basic dXNlcjpwYXNz"} {
		token, err := s.service.ExtractTokenFromHeader(header)
		s.ErrorIs(err, ErrInvalidAuthHeader, header)
		s.Empty(token)
	}
}

func BenchmarkTokenService_ValidateAccessToken(b *testing.B) {
	key, _, err := config.GenerateRSAKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	ts := NewTokenService(&config.JWTConfig{
		PrivateKey:          key,
		PublicKey:           &key.PublicKey,
		Issuer:              testIssuer,
		AccessTokenDuration: time.Hour,
	})
	token, _, err := ts.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ts.ValidateAccessToken(token); err != nil {
			b.Fatal(err)
		}
	}
}
