package jwthandling

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSubject = errors.New("token has no subject")

// Information a token enocodes
type ConductorUserClaims struct {
	OrgID     string `json:"org_id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewConductorUserToken(
	expiresIn time.Duration,
	userID string,
	orgID string,
	firstName string,
	lastName string,
	email string,
	isAdmin bool,
	secretKey string,
) (tokenString string, err error) {
	claims := ConductorUserClaims{
		orgID,
		firstName,
		lastName,
		email,
		isAdmin,
		jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateConductorUserToken(tokenString string, secretKey string) (claims *ConductorUserClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &ConductorUserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*ConductorUserClaims)
	valid = valid && token.Valid
	if valid && claims.Subject == "" {
		return claims, false, ErrMissingSubject
	}
	return
}
