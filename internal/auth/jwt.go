package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"planboard/internal/models"
)

// Sign issues an HS256 token carrying the user id, role, and the session
// token the request path checks for liveness.
func Sign(secret []byte, ttl time.Duration, userID string, role models.Role, sessionToken string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"sid":  sessionToken,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func Verify(secret []byte, tokenStr string) (Claims, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	sub, _ := mapc["sub"].(string)
	role, _ := mapc["role"].(string)
	sid, _ := mapc["sid"].(string)
	return Claims{Subject: sub, Role: models.Role(role), SessionToken: sid}, nil
}
