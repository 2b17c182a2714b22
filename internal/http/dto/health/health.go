// Package health contiene DTOs de los probes.
package health

type RootResponse struct {
	Message string `json:"message"`
}

type ReadyzResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components"`
}
