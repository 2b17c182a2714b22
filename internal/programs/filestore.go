package programs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dropDatabas3/wahlbot/internal/util/atomicwrite"
	"github.com/google/uuid"
)

// ErrInvalidName: el nombre no tiene ningún carácter utilizable.
var ErrInvalidName = errors.New("programs: invalid program name")

// FileStore guarda los archivos subidos en un directorio plano.
type FileStore struct {
	dir string
}

// NewFileStore crea el directorio si no existe.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("programs: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// SanitizeName deja sólo letras, dígitos, espacio, '-' y '_'.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Staged es un upload escrito a un temporal del directorio que todavía no
// ocupa su nombre final. Commit lo mueve a Path; Discard lo borra.
type Staged struct {
	Path string
	tmp  string
}

// Stage escribe el contenido a un temporal y calcula el destino
// <nombre saneado><extensión del upload>.
func (s *FileStore) Stage(name, uploadFilename string, content io.Reader) (*Staged, error) {
	safe := SanitizeName(name)
	if safe == "" {
		return nil, ErrInvalidName
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(uploadFilename)))
	st := &Staged{
		Path: filepath.Join(s.dir, safe+ext),
		tmp:  filepath.Join(s.dir, ".upload-"+uuid.NewString()),
	}
	if _, err := atomicwrite.WriteFrom(st.tmp, content, 0o644); err != nil {
		return nil, fmt.Errorf("programs: stage %s: %w", st.Path, err)
	}
	return st, nil
}

func (st *Staged) Commit() error {
	if err := os.Rename(st.tmp, st.Path); err != nil {
		return fmt.Errorf("programs: commit %s: %w", st.Path, err)
	}
	return nil
}

func (st *Staged) Discard() {
	_ = os.Remove(st.tmp)
}

// Save es Stage + Commit.
func (s *FileStore) Save(name, uploadFilename string, content io.Reader) (string, error) {
	st, err := s.Stage(name, uploadFilename, content)
	if err != nil {
		return "", err
	}
	if err := st.Commit(); err != nil {
		st.Discard()
		return "", err
	}
	return st.Path, nil
}

// Remove borra todos los archivos <nombre saneado>.* y devuelve cuántos.
func (s *FileStore) Remove(name string) (int, error) {
	safe := SanitizeName(name)
	if safe == "" {
		return 0, ErrInvalidName
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, safe+".*"))
	if err != nil {
		return 0, fmt.Errorf("programs: glob: %w", err)
	}
	// un archivo sin extensión también es del programa
	if _, err := os.Stat(filepath.Join(s.dir, safe)); err == nil {
		matches = append(matches, filepath.Join(s.dir, safe))
	}
	n := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return n, fmt.Errorf("programs: remove %s: %w", m, err)
		}
		n++
	}
	return n, nil
}
