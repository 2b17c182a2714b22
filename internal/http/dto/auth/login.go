// Package auth contiene DTOs de los endpoints /auth.
package auth

import "time"

// LoginRequest llega como application/x-www-form-urlencoded (username, password).
type LoginRequest struct {
	Username string
	Password string
}

// TokenResponse es el body de /auth/token y /auth/refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenPair es el resultado interno de login y refresh. El refresh token
// viaja sólo en la cookie.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RequestMeta describe el cliente que abre una sesión.
type RequestMeta struct {
	DeviceInfo string
	IPAddress  string
}

type MessageResponse struct {
	Message string `json:"message"`
}
