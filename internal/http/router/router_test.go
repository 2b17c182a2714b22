package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/chat"
	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	authctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/chat"
	healthctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/health"
	progctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/programs"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svcauth "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	svcchat "github.com/dropDatabas3/wahlbot/internal/http/services/chat"
	svchealth "github.com/dropDatabas3/wahlbot/internal/http/services/health"
	svcprog "github.com/dropDatabas3/wahlbot/internal/http/services/programs"
	svctasks "github.com/dropDatabas3/wahlbot/internal/http/services/tasks"
	jwtx "github.com/dropDatabas3/wahlbot/internal/jwt"
	"github.com/dropDatabas3/wahlbot/internal/metrics"
	"github.com/dropDatabas3/wahlbot/internal/programs"
	"github.com/dropDatabas3/wahlbot/internal/rate"
	"github.com/dropDatabas3/wahlbot/internal/security/password"
	"github.com/dropDatabas3/wahlbot/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const refreshTTL = 7 * 24 * time.Hour

type fakeAnswerer struct {
	last []chat.Message
}

func (f *fakeAnswerer) Complete(_ context.Context, messages []chat.Message) (string, error) {
	f.last = messages
	return "Das Programm fordert mehr Radwege.", nil
}

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	store   *memory.Store
	codec   *jwtx.Codec
	metrics *metrics.Metrics
	answer  *fakeAnswerer
}

func newHarness(t *testing.T, limit int) *harness {
	t.Helper()
	st := memory.New()
	codec, err := jwtx.NewCodec(jwtx.Options{
		Secret:     "router-test",
		Algorithm:  "HS256",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: refreshTTL,
	})
	require.NoError(t, err)

	m, err := metrics.New(metrics.Config{Namespace: "wahlbot"})
	require.NoError(t, err)

	fast := password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}
	for _, u := range []struct {
		name     string
		disabled bool
	}{{"alice", false}, {"mallory", true}} {
		h, err := password.Hash(fast, "pw-"+u.name)
		require.NoError(t, err)
		_, err = st.Principals().Create(context.Background(), repository.CreatePrincipalInput{
			Username: u.name, Email: u.name + "@example.test", FullName: u.name, HashedPassword: h, Disabled: u.disabled,
		})
		require.NoError(t, err)
	}

	files, err := programs.NewFileStore(t.TempDir())
	require.NoError(t, err)
	pool := programs.NewPool(2, 8)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	auth := svcauth.NewServices(svcauth.Deps{Principals: st.Principals(), Ledger: st.Sessions(), Codec: codec, Events: m})
	progs := svcprog.NewServices(svcprog.Deps{
		Programs: st.Programs(),
		Tasks:    st.Tasks(),
		Files:    files,
		Indexer:  programs.NewIndexer(st.Documents(), programs.TextExtractor{}),
		Pool:     pool,
		Metrics:  m,
	})
	ans := &fakeAnswerer{}
	chatSvc := svcchat.NewChatService(svcchat.Deps{
		Programs:  st.Programs(),
		Retriever: chat.NewDocumentRetriever(st.Documents()),
		Answerer:  ans,
		Metrics:   m,
	})

	h := New(Deps{
		RootPath:           "/api",
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		Gate:               auth.Gate,
		Limiter:            rate.NewMemoryLimiter(rate.Config{Max: limit, Window: time.Minute}, time.Minute),
		Metrics:            m,
		Auth: authctrl.NewControllers(auth, authctrl.ControllerDeps{
			Cookie:     helpers.CookieConfig{Name: "refresh_token", SameSite: "Lax"},
			RefreshTTL: refreshTTL,
		}),
		Programs: progctrl.NewControllers(progs, svctasks.NewTaskService(st.Tasks()), progctrl.ControllerDeps{}),
		Chat:     chatctrl.NewControllers(chatSvc),
		Health: healthctrl.NewControllers(svchealth.NewHealthService(svchealth.Deps{
			Version:    "test",
			Components: map[string]svchealth.Pinger{"db": st},
		})),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, store: st, codec: codec, metrics: m, answer: ans}
}

func (h *harness) do(req *http.Request) *http.Response {
	h.t.Helper()
	res, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func (h *harness) request(method, path string, body []byte, bearer string) *http.Request {
	h.t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, bytes.NewReader(body))
	require.NoError(h.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req
}

func (h *harness) login(username, pw string) (string, *http.Cookie) {
	h.t.Helper()
	form := url.Values{"username": {username}, "password": {pw}}
	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/auth/token", strings.NewReader(form.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := h.do(req)
	require.Equal(h.t, http.StatusOK, res.StatusCode)
	var body map[string]string
	require.NoError(h.t, json.NewDecoder(res.Body).Decode(&body))
	for _, c := range res.Cookies() {
		if c.Name == "refresh_token" {
			return body["access_token"], c
		}
	}
	h.t.Fatal("refresh cookie missing")
	return "", nil
}

func decode(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestScenario_LoginSetsRefreshCookie(t *testing.T) {
	h := newHarness(t, 100)
	access, ck := h.login("alice", "pw-alice")

	assert.NotEmpty(t, access)
	assert.Equal(t, int(refreshTTL/time.Second), ck.MaxAge)
	assert.True(t, ck.HttpOnly)
}

func TestScenario_RefreshWithoutCookie(t *testing.T) {
	h := newHarness(t, 100)
	res := h.do(h.request(http.MethodPost, "/api/auth/refresh", nil, ""))

	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "No refresh token provided", decode(t, res)["message"])
	assert.Equal(t, "no-store", res.Header.Get("Cache-Control"))
}

func TestScenario_LogoutAllInvalidatesRefreshCookie(t *testing.T) {
	h := newHarness(t, 100)
	access, ck := h.login("alice", "pw-alice")

	res := h.do(h.request(http.MethodPost, "/api/auth/logout-all", nil, access))
	require.Equal(t, http.StatusOK, res.StatusCode)

	req := h.request(http.MethodPost, "/api/auth/refresh", nil, "")
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	res = h.do(req)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "TOKEN_INVALID", decode(t, res)["code"])
}

func TestScenario_DisabledPrincipalWithValidAccessToken(t *testing.T) {
	h := newHarness(t, 100)
	mallory, err := h.store.Principals().GetByUsername(context.Background(), "mallory")
	require.NoError(t, err)
	access, err := h.codec.IssueAccess(mallory.Username)
	require.NoError(t, err)

	for _, path := range []string{"/api/auth/users/me", "/api/auth/users/me/", "/auth/users/me"} {
		res := h.do(h.request(http.MethodGet, path, nil, access))
		require.Equal(t, http.StatusBadRequest, res.StatusCode, path)
		assert.Equal(t, "Inactive user", decode(t, res)["message"], path)
	}
}

func TestRoutes_BearerRequired(t *testing.T) {
	h := newHarness(t, 100)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/users/me"},
		{http.MethodGet, "/api/auth/users/me/sessions"},
		{http.MethodPost, "/api/auth/logout-all"},
		{http.MethodGet, "/api/program/list"},
		{http.MethodGet, "/api/tasks/abc"},
		{http.MethodPost, "/api/chat/gruene"},
	} {
		res := h.do(h.request(tc.method, tc.path, nil, "not-a-jwt"))
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, tc.path)
		assert.Equal(t, "Bearer", res.Header.Get("WWW-Authenticate"), tc.path)
	}
}

func TestRoutes_RootReadyzAndMetrics(t *testing.T) {
	h := newHarness(t, 100)

	res := h.do(h.request(http.MethodGet, "/api/", nil, ""))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Wahlbot Backend", decode(t, res)["message"])

	res = h.do(h.request(http.MethodGet, "/readyz", nil, ""))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ready", decode(t, res)["status"])

	res = h.do(h.request(http.MethodGet, "/api/metrics", nil, ""))
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = h.do(h.request(http.MethodGet, "/api/nope", nil, ""))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	h := newHarness(t, 100)
	req := h.request(http.MethodOptions, "/api/auth/token", nil, "")
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res := h.do(req)

	assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
}

func uploadRequest(t *testing.T, h *harness, bearer, name, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	require.NoError(t, mp.WriteField("program_name", name))
	fw, err := mp.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/program/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)
	return req
}

func waitTask(t *testing.T, h *harness, bearer, taskID string) map[string]any {
	t.Helper()
	var last map[string]any
	require.Eventually(t, func() bool {
		res := h.do(h.request(http.MethodGet, "/api/tasks/"+taskID, nil, bearer))
		if res.StatusCode != http.StatusOK {
			return false
		}
		last = decode(t, res)
		return last["status"] == "completed" || last["status"] == "failed"
	}, 5*time.Second, 20*time.Millisecond)
	return last
}

func TestProgramLifecycle_UploadIngestChatDelete(t *testing.T) {
	h := newHarness(t, 100)
	access, _ := h.login("alice", "pw-alice")

	res := h.do(uploadRequest(t, h, access, "gruene", "programm.txt", "Mehr Radwege in allen Städten.\fKlimaschutz zuerst."))
	require.Equal(t, http.StatusOK, res.StatusCode)
	up := decode(t, res)
	assert.Equal(t, "success", up["status"])
	assert.NotEmpty(t, up["file_path"])

	res = h.do(uploadRequest(t, h, access, "gruene", "programm.txt", "x"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "exists", decode(t, res)["status"])

	res = h.do(h.request(http.MethodPost, "/api/program/ingest", []byte(`{"program_name":"gruene"}`), access))
	require.Equal(t, http.StatusOK, res.StatusCode)
	var session *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == "session_id" {
			session = c
		}
	}
	require.NotNil(t, session)
	task := decode(t, res)
	assert.Equal(t, "ingest", task["program_action"])
	assert.Equal(t, session.Value, task["session_id"])

	done := waitTask(t, h, access, task["task_id"].(string))
	require.Equal(t, "completed", done["status"], done["error"])

	n, err := h.store.Documents().CountByProgram(context.Background(), "gruene")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res = h.do(h.request(http.MethodGet, "/api/program/list", nil, access))
	require.Equal(t, http.StatusOK, res.StatusCode)
	list := decode(t, res)["programs"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "gruene", list[0].(map[string]any)["name"])

	res = h.do(h.request(http.MethodPost, "/api/chat/gruene",
		[]byte(`{"messages":[{"role":"user","content":"Was steht zu Radwege im Programm?"}]}`), access))
	require.Equal(t, http.StatusOK, res.StatusCode)
	msg := decode(t, res)["message"].(map[string]any)
	assert.Equal(t, "assistant", msg["role"])
	assert.Equal(t, "Das Programm fordert mehr Radwege.", msg["content"])
	require.NotEmpty(t, h.answer.last)
	assert.Contains(t, h.answer.last[0].Content, "Radwege")

	res = h.do(h.request(http.MethodDelete, "/api/program/delete/gruene", nil, access))
	require.Equal(t, http.StatusOK, res.StatusCode)
	done = waitTask(t, h, access, decode(t, res)["task_id"].(string))
	require.Equal(t, "completed", done["status"])

	_, err = h.store.Programs().GetByName(context.Background(), "gruene")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRoutes_TaskNotFound(t *testing.T) {
	h := newHarness(t, 100)
	access, _ := h.login("alice", "pw-alice")

	res := h.do(h.request(http.MethodGet, "/api/tasks/3f0c5f1e-0000-4000-8000-000000000000", nil, access))
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Task not found", decode(t, res)["message"])
}

func TestRoutes_ChatRateLimited(t *testing.T) {
	h := newHarness(t, 2)
	access, _ := h.login("alice", "pw-alice")

	body := []byte(`{"messages":[{"role":"user","content":"Hallo"}]}`)
	for i := 0; i < 2; i++ {
		res := h.do(h.request(http.MethodPost, "/api/chat/unbekannt", body, access))
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	}
	res := h.do(h.request(http.MethodPost, "/api/chat/unbekannt", body, access))
	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("Retry-After"))

	// Login no pasa por el limiter.
	h.login("alice", "pw-alice")
	h.login("alice", "pw-alice")

	res = h.do(h.request(http.MethodGet, "/metrics", nil, ""))
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `wahlbot_rate_limit_rejects_total{scope="chat"} 1`)
}
