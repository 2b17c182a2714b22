package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken cubre firma inválida, token malformado, token_type
	// desconocido y expiración vencida.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrEncoding indica clave o algoritmo mal configurados.
	ErrEncoding = errors.New("jwt: encoding failed")
)

var methods = map[string]jwtv5.SigningMethod{
	"HS256": jwtv5.SigningMethodHS256,
	"HS384": jwtv5.SigningMethodHS384,
	"HS512": jwtv5.SigningMethodHS512,
}

// Options configura un Codec. Now es opcional (default time.Now).
type Options struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Codec firma y valida access y refresh tokens con una única clave simétrica.
// No consulta el ledger: un refresh válido acá puede estar revocado.
type Codec struct {
	key        []byte
	method     jwtv5.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	newID      func() (string, error)
}

func NewCodec(opts Options) (*Codec, error) {
	if opts.Secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrEncoding)
	}
	m, ok := methods[strings.ToUpper(opts.Algorithm)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrEncoding, opts.Algorithm)
	}
	if opts.AccessTTL <= 0 || opts.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", ErrEncoding)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		key:        []byte(opts.Secret),
		method:     m,
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		now:        now,
		newID:      newTokenID,
	}, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }
