package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	"github.com/dropDatabas3/wahlbot/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Antwort (S. 2)  "}}]}`))
	}))
	defer srv.Close()

	cl := NewClient(ClientConfig{BaseURL: srv.URL + "/v1/", APIKey: "gsk_test", Model: "m", Timeout: time.Second})
	answer, err := cl.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Frage"}})
	require.NoError(t, err)
	assert.Equal(t, "Antwort (S. 2)", answer)
	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Frage", got.Messages[0].Content)
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Complete(context.Background(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid api key")

	_, err = NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k"}).Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_RespectsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Complete(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildSystemPrompt(t *testing.T) {
	docs := []repository.ScoredDocument{
		{Document: repository.Document{Page: 3, Content: " Windkraft ausbauen "}},
		{Document: repository.Document{Page: 7, Content: "Solarpflicht"}},
	}
	p := BuildSystemPrompt("Die Grünen", docs)
	assert.Contains(t, p, `"Die Grünen"`)
	assert.Contains(t, p, "[1] (S. 3)\nWindkraft ausbauen")
	assert.Contains(t, p, "[2] (S. 7)\nSolarpflicht")

	assert.Contains(t, BuildSystemPrompt("X", nil), "keine passenden Auszüge")
}

func TestAnswerMessages_Order(t *testing.T) {
	history := []Message{{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"}}
	msgs := AnswerMessages("P", nil, history, "c")
	require.Len(t, msgs, 4)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "a", msgs[1].Content)
	assert.Equal(t, "b", msgs[2].Content)
	assert.Equal(t, Message{Role: RoleUser, Content: "c"}, msgs[3])
}

func TestDocumentRetriever(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	_, err := st.Programs().Create(ctx, "P", "p.txt")
	require.NoError(t, err)
	_, err = st.Documents().InsertPages(ctx, "P", []string{"Mindestlohn erhöhen", "Bundeswehr stärken"})
	require.NoError(t, err)

	r := NewDocumentRetriever(st.Documents())
	docs, err := r.Retrieve(ctx, "P", "Was ist mit dem Mindestlohn?", 0)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Equal(t, 1, docs[0].Page)

	docs, err = r.Retrieve(ctx, "P", "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
