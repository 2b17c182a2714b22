package jwt

import (
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims es el resultado de Decode: AccessClaims o RefreshClaims.
// Los callers hacen type switch; no hay otras implementaciones.
type Claims interface {
	GetSubject() string
	isClaims()
}

// AccessClaims autoriza requests; no tiene identificador en el ledger.
type AccessClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// RefreshClaims lleva el TokenID (jti) que identifica la fila del ledger.
type RefreshClaims struct {
	Subject   string
	ExpiresAt time.Time
	TokenID   string
}

func (c AccessClaims) GetSubject() string  { return c.Subject }
func (c RefreshClaims) GetSubject() string { return c.Subject }
func (AccessClaims) isClaims()             {}
func (RefreshClaims) isClaims()            {}

// wireClaims es el payload serializado: sub, exp, iat, jti + token_type.
type wireClaims struct {
	TokenType string `json:"token_type"`
	jwtv5.RegisteredClaims
}
