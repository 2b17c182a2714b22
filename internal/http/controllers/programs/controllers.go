// Package programs contiene los controllers de /program y /tasks.
package programs

import (
	"net/http"

	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/programs"
	tasksvc "github.com/dropDatabas3/wahlbot/internal/http/services/tasks"
	"github.com/google/uuid"
)

type ControllerDeps struct {
	// SessionCookie agrupa los jobs de un mismo cliente.
	SessionCookie string
	MaxUploadMB   int64
}

type Controllers struct {
	Program *ProgramController
	Task    *TaskController
}

func NewControllers(s svc.Services, tasks tasksvc.TaskService, deps ControllerDeps) *Controllers {
	if deps.SessionCookie == "" {
		deps.SessionCookie = "session_id"
	}
	if deps.MaxUploadMB <= 0 {
		deps.MaxUploadMB = 50
	}
	return &Controllers{
		Program: NewProgramController(s.Programs, deps),
		Task:    NewTaskController(tasks),
	}
}

// sessionID reutiliza la cookie de sesión o emite una nueva.
func sessionID(w http.ResponseWriter, r *http.Request, name string) string {
	id := helpers.CookieValue(r, name)
	if id == "" {
		id = uuid.NewString()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   helpers.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
