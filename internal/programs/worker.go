package programs

import (
	"context"
	"errors"
	"sync"

	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"golang.org/x/sync/semaphore"
)

var (
	ErrPoolClosed = errors.New("programs: worker pool closed")
	ErrQueueFull  = errors.New("programs: worker queue full")
)

// Job es una unidad de trabajo en background. Recibe el contexto del pool,
// no el del request que la encoló.
type Job func(ctx context.Context)

// Pool ejecuta Jobs con concurrencia acotada por un semáforo. Submit no
// bloquea: los trabajos por encima del límite esperan su turno en su propia
// goroutine hasta queueSize; más allá Submit falla.
type Pool struct {
	sem    *semaphore.Weighted
	queue  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < workers {
		queueSize = workers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(workers)),
		queue:  make(chan struct{}, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- struct{}{}:
	default:
		return ErrQueueFull
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.queue }()

		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				logger.L().Error("background job panicked",
					logger.Component("programs.pool"), logger.Any("panic", rec))
			}
		}()
		job(p.ctx)
	}()
	return nil
}

// Shutdown deja de aceptar trabajos y espera a los que están en curso. Si
// ctx vence antes, cancela el contexto de los jobs y devuelve ctx.Err().
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
