package programs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "CDU 2025", SanitizeName("  CDU 2025!!  "))
	assert.Equal(t, "etcpasswd", SanitizeName("../../etc/passwd"))
	assert.Equal(t, "Grüne_Wahl-Programm", SanitizeName("Grüne_Wahl-Programm"))
	assert.Equal(t, "", SanitizeName("***"))
}

func TestFileStore_SaveAndRemove(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "programs"))
	require.NoError(t, err)

	path, err := fs.Save("SPD/2025", "Programm.TXT", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fs.Dir(), "SPD2025.txt"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	_, err = fs.Save("SPD2025", "other.md", strings.NewReader("x"))
	require.NoError(t, err)

	n, err := fs.Remove("SPD/2025")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(fs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files left behind")

	_, err = fs.Save("!!!", "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFileStore_StageDiscardLeavesDestinationAlone(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "programs"))
	require.NoError(t, err)
	path, err := fs.Save("CDU", "cdu.txt", strings.NewReader("erste"))
	require.NoError(t, err)

	st, err := fs.Stage("CDU", "cdu.txt", strings.NewReader("zweite"))
	require.NoError(t, err)
	assert.Equal(t, path, st.Path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "erste", string(b))

	st.Discard()
	entries, err := os.ReadDir(fs.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CDU.txt", entries[0].Name())
}

func TestTextExtractor(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "prog.txt")
	require.NoError(t, os.WriteFile(p, []byte("Seite eins\r\n\fSeite zwei\f\f  \fSeite drei"), 0o600))

	pages, err := TextExtractor{}.Extract(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Seite eins", "Seite zwei", "Seite drei"}, pages)

	pdf := filepath.Join(dir, "prog.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.7"), 0o600))
	_, err = TextExtractor{}.Extract(context.Background(), pdf)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = TextExtractor{MaxBytes: 4}.Extract(context.Background(), p)
	assert.Error(t, err)
}

func TestIndexer_IndexIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dir := t.TempDir()
	path := filepath.Join(dir, "p.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\fb\fc"), 0o600))

	prog, err := st.Programs().Create(ctx, "P", path)
	require.NoError(t, err)

	ix := NewIndexer(st.Documents(), nil)
	n, err := ix.Index(ctx, prog)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// el archivo desaparece: la segunda ingesta no vuelve a leerlo
	require.NoError(t, os.Remove(path))
	n, err = ix.Index(ctx, prog)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ix.Drop(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	count, err := st.Documents().CountByProgram(ctx, "P")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexer_EmptyFile(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte(" \f \n"), 0o600))
	prog, err := st.Programs().Create(ctx, "E", path)
	require.NoError(t, err)

	_, err = NewIndexer(st.Documents(), nil).Index(ctx, prog)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2, 16)
	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(func(ctx context.Context) {
			defer wg.Done()
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
		}))
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_QueueFullAndClosed(t *testing.T) {
	pool := NewPool(1, 1)
	release := make(chan struct{})
	require.NoError(t, pool.Submit(func(context.Context) { <-release }))
	assert.ErrorIs(t, pool.Submit(func(context.Context) {}), ErrQueueFull)

	close(release)
	require.NoError(t, pool.Shutdown(context.Background()))
	assert.ErrorIs(t, pool.Submit(func(context.Context) {}), ErrPoolClosed)
}

func TestPool_ShutdownDeadlineCancelsJobs(t *testing.T) {
	pool := NewPool(1, 4)
	cancelled := make(chan struct{})
	require.NoError(t, pool.Submit(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	<-cancelled
}

func TestPool_RecoversPanics(t *testing.T) {
	pool := NewPool(1, 4)
	require.NoError(t, pool.Submit(func(context.Context) { panic("boom") }))
	done := make(chan struct{})
	require.NoError(t, pool.Submit(func(context.Context) { close(done) }))
	<-done
	require.NoError(t, pool.Shutdown(context.Background()))
}
