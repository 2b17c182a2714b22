package auth

import "time"

// UserResponse es el body de GET /auth/users/me.
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Disabled bool   `json:"disabled"`
}

// SessionInfo es una sesión activa. El jti no se expone.
type SessionInfo struct {
	ID         int64     `json:"id"`
	DeviceInfo *string   `json:"device_info"`
	IPAddress  *string   `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type SessionsResponse struct {
	ActiveSessions []SessionInfo `json:"active_sessions"`
}
