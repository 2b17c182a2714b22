package jwt

import (
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Decode valida firma (algoritmo fijado al configurado) y expiración, y
// devuelve AccessClaims o RefreshClaims según token_type. Cualquier falla es
// ErrInvalidToken; la causa queda envuelta para logs.
func (c *Codec) Decode(token string) (Claims, error) {
	var wc wireClaims
	tk, err := jwtv5.ParseWithClaims(token, &wc,
		func(*jwtv5.Token) (any, error) { return c.key, nil },
		jwtv5.WithValidMethods([]string{c.method.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tk.Valid {
		return nil, ErrInvalidToken
	}
	if wc.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}

	exp := wc.ExpiresAt.Time
	switch wc.TokenType {
	case TypeAccess:
		return AccessClaims{Subject: wc.Subject, ExpiresAt: exp}, nil
	case TypeRefresh:
		// jti vacío se devuelve tal cual; el orquestador lo rechaza.
		return RefreshClaims{Subject: wc.Subject, ExpiresAt: exp, TokenID: wc.ID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown token_type %q", ErrInvalidToken, wc.TokenType)
	}
}
