package chat

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message es un turno de la conversación.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const answerInstructions = `Du bist ein neutraler Assistent, der Fragen zum Wahlprogramm "%s" beantwortet.
Antworte ausschließlich auf Grundlage der folgenden Auszüge. Wenn die Auszüge die Frage nicht beantworten, sag das offen.
Nenne die Seiten, auf die du dich stützt, im Format (S. n). Antworte in der Sprache der Frage.`

const rewriteInstructions = `Formuliere die letzte Frage des Nutzers als eigenständige Suchanfrage um, die ohne den bisherigen Gesprächsverlauf verständlich ist.
Gib nur die Suchanfrage zurück, ohne Erklärung.`

// BuildSystemPrompt arma el prompt de sistema con los pasajes numerados.
func BuildSystemPrompt(program string, docs []repository.ScoredDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, answerInstructions, program)
	b.WriteString("\n\nAuszüge:\n")
	if len(docs) == 0 {
		b.WriteString("(keine passenden Auszüge gefunden)\n")
		return b.String()
	}
	for i, d := range docs {
		fmt.Fprintf(&b, "\n[%d] (S. %d)\n%s\n", i+1, d.Page, strings.TrimSpace(d.Content))
	}
	return b.String()
}

// RewriteMessages pide al modelo una consulta autocontenida a partir del
// historial.
func RewriteMessages(history []Message, question string) []Message {
	out := make([]Message, 0, len(history)+2)
	out = append(out, Message{Role: RoleSystem, Content: rewriteInstructions})
	out = append(out, history...)
	out = append(out, Message{Role: RoleUser, Content: question})
	return out
}

// AnswerMessages arma la conversación final: sistema con contexto,
// historial y pregunta.
func AnswerMessages(program string, docs []repository.ScoredDocument, history []Message, question string) []Message {
	out := make([]Message, 0, len(history)+2)
	out = append(out, Message{Role: RoleSystem, Content: BuildSystemPrompt(program, docs)})
	out = append(out, history...)
	out = append(out, Message{Role: RoleUser, Content: question})
	return out
}
