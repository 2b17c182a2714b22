package programs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFile: el extractor no sabe leer ese formato.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Extractor convierte un archivo de programa en páginas de texto.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// TextExtractor lee archivos de texto plano y markdown. Las páginas se
// separan con form feed (\f), como las deja pdftotext.
type TextExtractor struct {
	MaxBytes int64
}

var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".md":   true,
}

func (e TextExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}

	if e.MaxBytes > 0 {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		if fi.Size() > e.MaxBytes {
			return nil, fmt.Errorf("extract: file too large (%d bytes)", fi.Size())
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: not valid UTF-8 text", ErrUnsupportedFile)
	}
	return SplitPages(string(b)), nil
}

// SplitPages corta en \f y descarta páginas vacías.
func SplitPages(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\f")
	pages := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	return pages
}
