package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/mlm-api/internal/errs"
	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Claims is the access token payload: sub is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the "JWT-auth" bearer scheme declared in the API docs.
type AuthMiddleware struct {
	server *server.Server
	secret []byte
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		secret: []byte(s.Config.Auth.JWTSecret),
	}
}

// RequireAuth rejects requests without a valid HS256 bearer token signed
// with JWT_SECRET. On success user_id and user_role are set on the context.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		claims, err := auth.parseToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			auth.server.Logger.Warn().
				Err(err).
				Str("function", "RequireAuth").
				Str("request_id", GetRequestID(c)).
				Dur("duration", time.Since(start)).
				Msg("rejected bearer token")

			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, claims.Role)

		requestLogger := GetLogger(c).With().
			Str("user_id", claims.Subject).
			Str("user_role", claims.Role).
			Logger()
		c.Set(LoggerKey, &requestLogger)
		c.SetRequest(c.Request().WithContext(
			context.WithValue(c.Request().Context(), loggerCtxKey{}, &requestLogger),
		))

		auth.server.Logger.Debug().
			Str("function", "RequireAuth").
			Str("user_id", claims.Subject).
			Str("request_id", GetRequestID(c)).
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}

func (auth *AuthMiddleware) parseToken(header string) (*Claims, error) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, errors.New("missing bearer token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return auth.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}
