package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var (
	TokenAuth *jwtauth.JWTAuth
	tokenExp  time.Duration
)

func InitJWT(key []byte, exp time.Duration) {
	TokenAuth = jwtauth.New("HS256", key, nil)
	tokenExp = exp
}

// GenerateToken issues a token for a dashboard member.
func GenerateToken(username, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      now.Add(tokenExp).Unix(),
		"iat":      now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetUsernameFromClaims(claims map[string]interface{}) (string, error) {
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", errors.New("username claim is missing or not a string")
	}
	return username, nil
}

func GetRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
