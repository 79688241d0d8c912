package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the JWT claim set carried by every access token.
type AccessTokenClaims struct {
	UserID  uuid.UUID `json:"uid"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"adm"`
	jwt.RegisteredClaims
}

// AccessTokenPayload carries the identity attributes minted into a token.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
	JTI     string
}
