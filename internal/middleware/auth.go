package middleware

import (
	stderrors "errors"

	"expense-tracker/internal/errors"
	"expense-tracker/internal/handlers"
	"expense-tracker/internal/models"
	"expense-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	authEventSuccess = "token_accepted"
	authEventMissing = "token_missing"
	authEventExpired = "token_expired"
	authEventInvalid = "token_invalid"
)

// authFailure names the metric event and envelope code of a rejected request
type authFailure struct {
	event string
	code  errors.ErrorCode
}

func authenticate(tokenService services.TokenServiceInterface, header string) (*models.CustomClaims, uuid.UUID, *authFailure) {
	if header == "" {
		return nil, uuid.Nil, &authFailure{authEventMissing, errors.AuthMissingToken}
	}

	token, err := tokenService.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, uuid.Nil, &authFailure{authEventInvalid, errors.AuthInvalidTokenFormat}
	}

	claims, err := tokenService.ValidateAccessToken(token)
	switch {
	case stderrors.Is(err, services.ErrExpiredToken):
		return nil, uuid.Nil, &authFailure{authEventExpired, errors.AuthExpiredToken}
	case err != nil:
		return nil, uuid.Nil, &authFailure{authEventInvalid, errors.AuthInvalidTokenFormat}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, uuid.Nil, &authFailure{authEventInvalid, errors.AuthInvalidTokenFormat}
	}
	return claims, userID, nil
}

// RequireAuth rejects requests without a valid RS256 access token. The token's
// user id is stored under handlers.UserIDContextKey and scopes every expense
// query made while serving the request.
func RequireAuth(tokenService services.TokenServiceInterface, metrics services.MetricsRecorderInterface) echo.MiddlewareFunc {
	record := func(event string) {
		if metrics != nil {
			metrics.IncrementCounter(services.MetricAuthentication, map[string]string{"event_type": event})
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, userID, failure := authenticate(tokenService, c.Request().Header.Get(echo.HeaderAuthorization))
			if failure != nil {
				record(failure.event)
				return handlers.SendError(c, failure.code)
			}

			c.Set(handlers.UserIDContextKey, userID)
			c.Set("user_email", claims.Email)
			c.Set("token_jti", claims.ID)
			record(authEventSuccess)

			return next(c)
		}
	}
}
