package jwt

import (
	"fmt"
	"time"

	tokens "github.com/dropDatabas3/wahlbot/internal/security/token"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

func newTokenID() (string, error) {
	return tokens.GenerateOpaqueToken(tokens.RefreshIDBytes)
}

// IssueAccess firma {sub, token_type:"access", iat, exp=now+AccessTTL}.
// Con reloj fijo el resultado es determinístico.
func (c *Codec) IssueAccess(subject string) (string, error) {
	now := c.now().UTC()
	claims := wireClaims{
		TokenType: TypeAccess,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return c.sign(claims)
}

// IssueRefresh firma {sub, token_type:"refresh", jti, iat, exp=now+RefreshTTL}
// y devuelve también el jti y la expiración para persistir en el ledger.
func (c *Codec) IssueRefresh(subject string) (token, tokenID string, expiresAt time.Time, err error) {
	tokenID, err = c.newID()
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("%w: token id: %v", ErrEncoding, err)
	}
	now := c.now().UTC()
	// NumericDate trunca a segundos; la fila del ledger guarda el mismo valor que el JWT.
	exp := jwtv5.NewNumericDate(now.Add(c.refreshTTL))
	claims := wireClaims{
		TokenType: TypeRefresh,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   subject,
			ID:        tokenID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: exp,
		},
	}
	token, err = c.sign(claims)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, tokenID, exp.Time, nil
}

func (c *Codec) sign(claims wireClaims) (string, error) {
	tk := jwtv5.NewWithClaims(c.method, claims)
	signed, err := tk.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return signed, nil
}
