package helpers

import (
	"net"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	unknownClient    = "Unknown"
	maxDeviceInfoLen = 255
)

// DeviceInfo devuelve el User-Agent truncado a 255 bytes sin cortar runas.
func DeviceInfo(r *http.Request) string {
	ua := strings.TrimSpace(r.Header.Get("User-Agent"))
	if ua == "" {
		return unknownClient
	}
	return truncateUTF8(ua, maxDeviceInfoLen)
}

// ClientIP usa la primera entrada de X-Forwarded-For y si no, el host de RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if i := strings.IndexByte(xff, ','); i >= 0 {
			first = xff[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if r.RemoteAddr == "" {
		return unknownClient
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if host == "" {
		return unknownClient
	}
	return host
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
