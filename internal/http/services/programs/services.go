// Package programs contiene el service de carga, ingesta y borrado de
// programas. Ingesta y borrado corren en el pool de workers y se siguen
// con un ProgramTask.
package programs

import (
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/dropDatabas3/wahlbot/internal/programs"
)

// TaskRecorder registra la duración y el resultado de los jobs
// (implementado por *metrics.Metrics).
type TaskRecorder interface {
	RecordTask(action, status string, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordTask(string, string, time.Duration) {}

// Deps contiene las dependencias del service.
type Deps struct {
	Programs repository.ProgramRepository
	Tasks    repository.TaskRepository
	Files    *programs.FileStore
	Indexer  *programs.Indexer
	Pool     *programs.Pool
	Metrics  TaskRecorder // nil = no-op
	Now      func() time.Time
}

// Services agrupa los services del dominio programs.
type Services struct {
	Programs ProgramService
}

func NewServices(d Deps) Services {
	return Services{Programs: NewProgramService(d)}
}
