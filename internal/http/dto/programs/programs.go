// Package programs contiene DTOs de /program y /tasks.
package programs

import "time"

type UploadResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	FilePath string `json:"file_path,omitempty"`
}

type IngestRequest struct {
	ProgramName string `json:"program_name"`
}

type ProgramInfo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Programs []ProgramInfo `json:"programs"`
}
