package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rpupo63/inkwell-blog-backend/errs"
	"github.com/rpupo63/inkwell-blog-backend/models"
)

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// issueToken signs a bearer token for the user with the given lifetime.
func issueToken(secret []byte, user *models.User, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseToken verifies a bearer token and extracts the caller's identity.
func parseToken(secret []byte, tokenString string) (Identity, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, errs.NewExpiredTokenError()
		}
		return Identity{}, errs.NewInvalidTokenError()
	}
	if !token.Valid {
		return Identity{}, errs.NewInvalidTokenError()
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, errs.NewInvalidTokenError()
	}

	return Identity{UserID: userID, Username: claims.Username}, nil
}
