package password

import "strings"

// Policy valida contraseñas al crear usuarios desde la CLI. Las longitudes
// se cuentan en runas; MaxLength <= 0 no pone tope.
type Policy struct {
	MinLength int
	MaxLength int
}

// DefaultPolicy acota el input que llega a argon2id.
var DefaultPolicy = Policy{MinLength: 8, MaxLength: 256}

func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if strings.TrimSpace(s) == "" {
		return false, []string{"blank"}
	}
	n := len([]rune(s))
	if n < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		reasons = append(reasons, "too_long")
	}
	return len(reasons) == 0, reasons
}
