package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware creates an Echo middleware that verifies the Bearer token
// and stores the caller's user id under "userID" in the context.
//
// Verification order: Firebase ID token when an auth client is configured,
// then an HS256 dev token signed with AUTH_DEV_SECRET (claims must carry
// "uid"). The dev path keeps local setups and tests working without
// Firebase credentials.
func AuthMiddleware(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}
			rawToken := tokenParts[1]

			if authClient != nil {
				token, err := authClient.VerifyIDToken(context.Background(), rawToken)
				if err == nil {
					c.Set("userID", token.UID)
					c.Set("firebaseToken", token)
					return next(c)
				}
			}

			uid, err := verifyDevToken(rawToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}
			c.Set("userID", uid)

			return next(c)
		}
	}
}

// DevClaims is the claim set of locally signed dev tokens
type DevClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

func verifyDevToken(tokenString string) (string, error) {
	secret := os.Getenv("AUTH_DEV_SECRET")
	if secret == "" {
		return "", jwt.ErrTokenUnverifiable
	}

	claims := &DevClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.UID, nil
}
