package memory

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

type programRepo struct{ s *Store }

func (r *programRepo) GetByName(ctx context.Context, name string) (*repository.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *programRepo) Create(ctx context.Context, name, filePath string) (*repository.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.programs[name]; ok {
		return nil, repository.ErrConflict
	}
	r.s.nextProgramID++
	p := &repository.Program{ID: r.s.nextProgramID, Name: name, FilePath: filePath, CreatedAt: r.s.now().UTC()}
	r.s.programs[name] = p
	cp := *p
	return &cp, nil
}

func (r *programRepo) List(ctx context.Context) ([]repository.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]repository.Program, 0, len(r.s.programs))
	for _, p := range r.s.programs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *programRepo) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.programs[name]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.programs, name)
	return nil
}

type documentRepo struct{ s *Store }

func (r *documentRepo) CountByProgram(ctx context.Context, program string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, d := range r.s.docs {
		if d.ProgramName == program {
			n++
		}
	}
	return n, nil
}

func (r *documentRepo) InsertPages(ctx context.Context, program string, pages []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now().UTC()
	for i, content := range pages {
		r.s.nextDocID++
		r.s.docs = append(r.s.docs, repository.Document{
			ID:          r.s.nextDocID,
			ProgramName: program,
			Page:        i + 1,
			Content:     content,
			CreatedAt:   now,
		})
	}
	return len(pages), nil
}

func (r *documentRepo) DeleteByProgram(ctx context.Context, program string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.docs[:0]
	n := 0
	for _, d := range r.s.docs {
		if d.ProgramName == program {
			n++
			continue
		}
		kept = append(kept, d)
	}
	r.s.docs = kept
	return n, nil
}

// Search puntúa por cantidad de términos distintos de la consulta presentes
// en la página. Páginas sin coincidencias no se devuelven.
func (r *documentRepo) Search(ctx context.Context, program, query string, limit int) ([]repository.ScoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := terms(query)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]repository.ScoredDocument, 0)
	for _, d := range r.s.docs {
		if d.ProgramName != program {
			continue
		}
		content := strings.ToLower(d.Content)
		score := 0
		for t := range terms {
			if strings.Contains(content, t) {
				score++
			}
		}
		if score > 0 {
			out = append(out, repository.ScoredDocument{Document: d, Score: float64(score)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Page < out[j].Page
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func terms(q string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, f := range strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(f)) >= 3 {
			out[f] = struct{}{}
		}
	}
	return out
}
