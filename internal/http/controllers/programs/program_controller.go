package programs

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/programs"
	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/programs"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

// ProgramController maneja upload, ingest, list y delete.
type ProgramController struct {
	service svc.ProgramService
	deps    ControllerDeps
}

func NewProgramController(service svc.ProgramService, deps ControllerDeps) *ProgramController {
	return &ProgramController{service: service, deps: deps}
}

// Upload maneja POST /program/upload (multipart: program_name, file).
func (c *ProgramController) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ProgramController.Upload"))

	r.Body = http.MaxBytesReader(w, r.Body, c.deps.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return
		}
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("expected multipart/form-data"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("program_name and file are required"))
		return
	}
	defer file.Close()
	name := strings.TrimSpace(r.FormValue("program_name"))
	if name == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("program_name and file are required"))
		return
	}

	res, err := c.service.Upload(ctx, name, header.Filename, file)
	if err != nil {
		if errors.Is(err, svc.ErrInvalidProgramName) {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid program_name"))
			return
		}
		log.Error("upload failed", logger.Program(name), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

// Ingest maneja POST /program/ingest.
func (c *ProgramController) Ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProgramName) == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("program_name is required"))
		return
	}
	sid := sessionID(w, r, c.deps.SessionCookie)
	task, err := c.service.StartIngest(r.Context(), req.ProgramName, sid)
	c.writeTask(w, r, "ProgramController.Ingest", task, err)
}

// Delete maneja DELETE /program/delete/{program_name}.
func (c *ProgramController) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "program_name")
	sid := sessionID(w, r, c.deps.SessionCookie)
	task, err := c.service.StartDelete(r.Context(), name, sid)
	c.writeTask(w, r, "ProgramController.Delete", task, err)
}

// List maneja GET /program/list.
func (c *ProgramController) List(w http.ResponseWriter, r *http.Request) {
	res, err := c.service.List(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("list programs failed", logger.Op("ProgramController.List"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

func (c *ProgramController) writeTask(w http.ResponseWriter, r *http.Request, op string, task *dto.TaskResponse, err error) {
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidProgramName):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid program_name"))
		case errors.Is(err, svc.ErrBusy):
			httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("too many background tasks"))
		default:
			logger.From(r.Context()).Error("start task failed", logger.Op(op), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, task)
}
