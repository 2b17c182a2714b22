package programs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/programs"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/dropDatabas3/wahlbot/internal/programs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidProgramName = errors.New("invalid program name")
	ErrBusy               = errors.New("too many background tasks")
)

// ProgramService opera sobre el catálogo de programas.
type ProgramService interface {
	Upload(ctx context.Context, name, filename string, content io.Reader) (*dto.UploadResponse, error)
	StartIngest(ctx context.Context, name, sessionID string) (*dto.TaskResponse, error)
	StartDelete(ctx context.Context, name, sessionID string) (*dto.TaskResponse, error)
	List(ctx context.Context) (*dto.ListResponse, error)
}

type programService struct {
	deps Deps
}

func NewProgramService(d Deps) ProgramService {
	if d.Metrics == nil {
		d.Metrics = noopRecorder{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &programService{deps: d}
}

func (s *programService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("programs"),
		logger.Op(op),
	)
}

// Upload guarda el archivo y crea el Program. Si ya existe un programa con
// ese nombre no toca nada y responde status "exists".
func (s *programService) Upload(ctx context.Context, name, filename string, content io.Reader) (*dto.UploadResponse, error) {
	name = strings.TrimSpace(name)
	if programs.SanitizeName(name) == "" {
		return nil, ErrInvalidProgramName
	}
	log := s.log(ctx, "Upload").With(logger.Program(name))

	if _, err := s.deps.Programs.GetByName(ctx, name); err == nil {
		log.Info("program already exists")
		return &dto.UploadResponse{Status: "exists", Message: fmt.Sprintf("Program '%s' already exists", name)}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("upload: lookup: %w", err)
	}

	// El archivo sólo ocupa su nombre final una vez que el Program es nuestro.
	staged, err := s.deps.Files.Stage(name, filename, content)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	path := staged.Path
	if _, err := s.deps.Programs.Create(ctx, name, path); err != nil {
		staged.Discard()
		if errors.Is(err, repository.ErrConflict) {
			log.Info("program created concurrently")
			return &dto.UploadResponse{Status: "exists", Message: fmt.Sprintf("Program '%s' already exists", name)}, nil
		}
		return nil, fmt.Errorf("upload: create: %w", err)
	}
	if err := staged.Commit(); err != nil {
		staged.Discard()
		if derr := s.deps.Programs.Delete(context.WithoutCancel(ctx), name); derr != nil {
			log.Error("program row left without file", logger.Err(derr))
		}
		return nil, fmt.Errorf("upload: %w", err)
	}

	log.Info("program uploaded", logger.String("file_path", path))
	return &dto.UploadResponse{
		Status:   "success",
		Message:  fmt.Sprintf("Program '%s' uploaded successfully", name),
		FilePath: path,
	}, nil
}

func (s *programService) List(ctx context.Context) (*dto.ListResponse, error) {
	rows, err := s.deps.Programs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	out := make([]dto.ProgramInfo, 0, len(rows))
	for _, p := range rows {
		out = append(out, dto.ProgramInfo{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt})
	}
	return &dto.ListResponse{Programs: out}, nil
}

func (s *programService) StartIngest(ctx context.Context, name, sessionID string) (*dto.TaskResponse, error) {
	return s.start(ctx, repository.ActionIngest, name, sessionID, s.runIngest)
}

func (s *programService) StartDelete(ctx context.Context, name, sessionID string) (*dto.TaskResponse, error) {
	return s.start(ctx, repository.ActionDelete, name, sessionID, s.runDelete)
}

type jobFunc func(ctx context.Context, log *zap.Logger, name string) (*int64, error)

// start crea el ProgramTask en pending y encola el job. Si el pool lo
// rechaza el task queda failed.
func (s *programService) start(ctx context.Context, action repository.TaskAction, name, sessionID string, run jobFunc) (*dto.TaskResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidProgramName
	}
	task, err := s.deps.Tasks.Create(ctx, repository.CreateTaskInput{
		TaskID:      uuid.NewString(),
		SessionID:   sessionID,
		ProgramName: name,
		Action:      action,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create task: %w", action, err)
	}

	log := s.log(ctx, string(action)).With(logger.TaskID(task.TaskID), logger.Program(name))
	jobLog := log.With(logger.Layer("worker"))

	err = s.deps.Pool.Submit(func(jobCtx context.Context) {
		s.execute(jobCtx, jobLog, task.TaskID, action, name, run)
	})
	if err != nil {
		msg := err.Error()
		_ = s.deps.Tasks.Update(context.WithoutCancel(ctx), task.TaskID, repository.TaskUpdate{Status: repository.TaskFailed, Error: &msg})
		log.Warn("task rejected by worker pool", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrBusy, err)
	}

	log.Info("task queued")
	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

func (s *programService) execute(ctx context.Context, log *zap.Logger, taskID string, action repository.TaskAction, name string, run jobFunc) {
	start := s.deps.Now()
	if err := s.deps.Tasks.Update(ctx, taskID, repository.TaskUpdate{Status: repository.TaskProcessing}); err != nil {
		log.Error("mark task processing", logger.Err(err))
		return
	}

	programID, runErr := run(ctx, log, name)

	// el resultado se persiste aunque el pool se esté cerrando
	finalCtx := context.WithoutCancel(ctx)
	upd := repository.TaskUpdate{Status: repository.TaskCompleted, ProgramID: programID}
	if runErr != nil {
		msg := runErr.Error()
		upd = repository.TaskUpdate{Status: repository.TaskFailed, Error: &msg}
		log.Error("task failed", logger.Err(runErr))
	} else {
		log.Info("task completed")
	}
	if err := s.deps.Tasks.Update(finalCtx, taskID, upd); err != nil {
		log.Error("persist task result", logger.Err(err))
	}
	s.deps.Metrics.RecordTask(string(action), string(upd.Status), s.deps.Now().Sub(start))
}

func (s *programService) runIngest(ctx context.Context, log *zap.Logger, name string) (*int64, error) {
	p, err := s.deps.Programs.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("program '%s' not found", name)
		}
		return nil, err
	}
	n, err := s.deps.Indexer.Index(ctx, p)
	if err != nil {
		return nil, err
	}
	log.Debug("program indexed", logger.Count(n))
	id := p.ID
	return &id, nil
}

// runDelete borra documentos, archivos y el registro. Un programa
// inexistente no es error.
func (s *programService) runDelete(ctx context.Context, log *zap.Logger, name string) (*int64, error) {
	docs, err := s.deps.Indexer.Drop(ctx, name)
	if err != nil {
		return nil, err
	}
	files, err := s.deps.Files.Remove(name)
	if err != nil && !errors.Is(err, programs.ErrInvalidName) {
		return nil, err
	}
	if err := s.deps.Programs.Delete(ctx, name); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("delete program row: %w", err)
	}
	log.Debug("program deleted", logger.Int("documents", docs), logger.Int("files", files))
	return nil, nil
}
