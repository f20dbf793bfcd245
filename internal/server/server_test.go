package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/automenta/mcr-sub003/internal/llm"
	"github.com/automenta/mcr-sub003/internal/mcr"
	"github.com/automenta/mcr-sub003/internal/reason"
	"github.com/automenta/mcr-sub003/internal/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := session.New(0)
	t.Cleanup(store.Close)
	svc := mcr.New(llm.NewMock(), reason.New(5*time.Second, 100), store, zap.NewNop())
	ts := httptest.NewServer(New(svc, zap.NewNop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createSession(t *testing.T, ts *httptest.Server, seed string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions", map[string]string{"seedClauses": seed})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out map[string]string
	decode(t, resp, &out)
	require.NotEmpty(t, out["sessionId"])
	return out["sessionId"]
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestTraceIDEchoed(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Trace-ID", "trace-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "trace-123", resp.Header.Get("X-Trace-ID"))
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "parent(a,b).")

	resp := doJSON(t, http.MethodGet, ts.URL+"/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var kb kbResponse
	decode(t, resp, &kb)
	assert.Equal(t, "parent(a,b).", kb.KnowledgeBase)

	resp = doJSON(t, http.MethodGet, ts.URL+"/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []sessionResponse
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].SessionID)
	assert.Equal(t, 1, list[0].ClauseCount)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/sessions/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/sessions/"+id, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateSessionRejectsBadSeed(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions", map[string]string{"seedClauses": "not a clause"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssertEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/assert",
		map[string]string{"text": "The sphere is red."})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res mcr.AssertResult
	decode(t, resp, &res)
	assert.Equal(t, "FACT", res.Intent)
	assert.Equal(t, []string{"mock_fact(mock)."}, res.AddedClauses)
}

func TestAssertUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/fabricated/assert",
		map[string]string{"text": "anything"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAssertRequiresText(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "")
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/assert", map[string]string{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "grandparent(elizabeth, george).")

	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/query",
		map[string]any{"question": "Who are the grandparents of George?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res mcr.QueryResult
	decode(t, resp, &res)
	assert.Equal(t, "grandparent(Grandparent, george)", res.GeneratedQuery)
	assert.True(t, res.Proved)
	require.Len(t, res.Bindings, 1)
	assert.Equal(t, "elizabeth", res.Bindings[0]["Grandparent"])
}

func TestReplaceKB(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "old(a).")

	resp := doJSON(t, http.MethodPut, ts.URL+"/sessions/"+id+"/kb",
		map[string]string{"knowledgeBase": "new(b).\nnew(c)."})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/sessions/"+id, nil)
	var kb kbResponse
	decode(t, resp, &kb)
	assert.Equal(t, "new(b).\nnew(c).", kb.KnowledgeBase)
}

func TestConfigureLLM(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/config/llm",
		map[string]string{"provider": "openai", "apiKey": "k", "model": "gpt-4o-mini"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	decode(t, resp, &out)
	assert.Equal(t, "openai:gpt-4o-mini", out["provider"])

	// Swap back to the offline provider and confirm the pipeline uses it.
	resp = doJSON(t, http.MethodPost, ts.URL+"/config/llm", map[string]string{"provider": "mock"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	id := createSession(t, ts, "")
	resp = doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/assert",
		map[string]string{"text": "The sphere is red."})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res mcr.AssertResult
	decode(t, resp, &res)
	assert.Equal(t, []string{"mock_fact(mock)."}, res.AddedClauses)
}

func TestConfigureLLMRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/config/llm", map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/config/llm",
		map[string]string{"provider": "carrier-pigeon"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A provider that needs credentials fails closed without them.
	resp = doJSON(t, http.MethodPost, ts.URL+"/config/llm",
		map[string]string{"provider": "gemini"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReplaceKBRejectsInvalidProgram(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "old(a).")

	resp := doJSON(t, http.MethodPut, ts.URL+"/sessions/"+id+"/kb",
		map[string]string{"knowledgeBase": "broken("})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/sessions/"+id, nil)
	var kb kbResponse
	decode(t, resp, &kb)
	assert.Equal(t, "old(a).", kb.KnowledgeBase)
}
