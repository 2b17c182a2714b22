package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// DurationMs registra una duración en milisegundos.
func DurationMs(d time.Duration) zap.Field { return zap.Int64("duration_ms", d.Milliseconds()) }

// ---- Dominio ----

// UserID identifica al principal por su id numérico.
func UserID(v int64) zap.Field { return zap.Int64("user_id", v) }

// Subject es el handle (username) presente en el claim sub.
func Subject(v string) zap.Field { return zap.String("subject", v) }

func TaskID(v string) zap.Field  { return zap.String("task_id", v) }
func Program(v string) zap.Field { return zap.String("program", v) }

// TokenFP registra un fingerprint corto de un identificador de token.
// Nunca loguear el jti ni el token completo.
func TokenFP(tokenID string) zap.Field {
	if tokenID == "" {
		return zap.String("token_fp", "")
	}
	sum := sha256.Sum256([]byte(tokenID))
	return zap.String("token_fp", hex.EncodeToString(sum[:4]))
}

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }

// Layer: handler, service, store, worker.
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field  { return zap.Error(err) }
func Count(v int) zap.Field    { return zap.Int("count", v) }
func Attempt(v int) zap.Field  { return zap.Int("attempt", v) }

// ---- Genéricos ----

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
