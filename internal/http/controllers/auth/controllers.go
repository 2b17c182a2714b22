// Package auth contiene los controllers de /auth: login, rotación de
// refresh tokens, logout y consulta de sesiones.
package auth

import (
	"net/http"
	"time"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/auth"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
)

// ControllerDeps contiene la configuración de la cookie del refresh token.
type ControllerDeps struct {
	Cookie     helpers.CookieConfig
	RefreshTTL time.Duration
}

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Token    *TokenController
	Refresh  *RefreshController
	Logout   *LogoutController
	Me       *MeController
	Sessions *SessionsController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services, deps ControllerDeps) *Controllers {
	c := cookies{cfg: deps.Cookie, ttl: deps.RefreshTTL}
	return &Controllers{
		Token:    NewTokenController(s.Sessions, c),
		Refresh:  NewRefreshController(s.Sessions, c),
		Logout:   NewLogoutController(s.Sessions, c),
		Me:       NewMeController(),
		Sessions: NewSessionsController(s.Sessions),
	}
}

// cookies encapsula el alta y baja de la cookie del refresh token.
type cookies struct {
	cfg helpers.CookieConfig
	ttl time.Duration
}

func (c cookies) set(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, helpers.BuildCookie(c.cfg, token, helpers.IsSecureRequest(r), c.ttl))
}

func (c cookies) clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, helpers.BuildDeletionCookie(c.cfg, helpers.IsSecureRequest(r)))
}

func (c cookies) read(r *http.Request) string {
	return helpers.CookieValue(r, c.cfg.Name)
}

func requestMeta(r *http.Request) dto.RequestMeta {
	return dto.RequestMeta{DeviceInfo: helpers.DeviceInfo(r), IPAddress: helpers.ClientIP(r)}
}
