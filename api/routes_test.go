package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/expense-server/internal/audit"
	"github.com/carson-networks/expense-server/internal/auth"
	"github.com/carson-networks/expense-server/internal/logging"
	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/storage/memory"
)

func newTestRouter(t *testing.T, requireAuth bool) (http.Handler, *auth.Tokens) {
	t.Helper()
	logger := logging.SetupLogging("error")
	store := memory.NewStore()
	tokens := auth.NewTokens("test-secret", time.Minute)
	rest := &Rest{
		Logger:         logger,
		Service:        service.NewService(store, audit.NewLogSink(logger), tokens, logger),
		Storage:        store,
		Tokens:         tokens,
		RequireAuth:    requireAuth,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	return rest.Router(), tokens
}

func do(h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Status(t *testing.T) {
	h, _ := newTestRouter(t, false)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/status", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/status", "", nil).Code)
}

func TestRouter_ExpenseLifecycle(t *testing.T) {
	h, _ := newTestRouter(t, false)

	created := do(h, http.MethodPost, "/expenses", `{"amount":"12.50","category":"Food","date":"2025-01-02","merchant":"Cafe"}`, nil)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	location := created.Header().Get("Location")
	assert.Equal(t, "/expenses/1", location)
	assert.NotEmpty(t, created.Header().Get(logging.RequestIDHeader))

	list := do(h, http.MethodGet, "/expenses?category=food", "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, "1", list.Header().Get("X-Total-Count"))

	patched := do(h, http.MethodPatch, location, `{"merchant":null}`, nil)
	require.Equal(t, http.StatusOK, patched.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(patched.Body).Decode(&body))
	assert.Nil(t, body["merchant"])
	assert.Equal(t, "12.5", body["amount"])

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, location, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, location, "", nil).Code)
}

func TestRouter_EnforcedAuth(t *testing.T) {
	h, tokens := newTestRouter(t, true)

	resp := do(h, http.MethodGet, "/expenses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	token, err := tokens.Issue("ana")
	require.NoError(t, err)
	resp = do(h, http.MethodGet, "/expenses", "", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	h, tokens := newTestRouter(t, true)

	reg := do(h, http.MethodPost, "/auth/register", `{"username":"ana","email":"ana@example.com","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusCreated, reg.Code, reg.Body.String())

	dup := do(h, http.MethodPost, "/auth/register", `{"username":"ana","email":"ana@example.com","password":"s3cret-pass"}`, nil)
	assert.Equal(t, http.StatusConflict, dup.Code)

	bad := do(h, http.MethodPost, "/auth/login", `{"username":"ana","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	login := do(h, http.MethodPost, "/auth/login", `{"username":"ana","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(login.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)
	username, err := tokens.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana", username)
}

func newTestRest(t *testing.T, port string) *Rest {
	t.Helper()
	logger := logging.SetupLogging("error")
	store := memory.NewStore()
	tokens := auth.NewTokens("test-secret", time.Minute)
	return &Rest{
		Logger:  logger,
		Port:    port,
		Service: service.NewService(store, audit.NewLogSink(logger), tokens, logger),
		Storage: store,
		Tokens:  tokens,
	}
}

func TestServe_StopsWhenContextCancelled(t *testing.T) {
	rest := newTestRest(t, "0")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- rest.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServe_ReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	rest := newTestRest(t, port)

	done := make(chan error, 1)
	go func() { done <- rest.Serve(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not report the listen failure")
	}
}

func TestRouter_PutBackFetchedRecord(t *testing.T) {
	h, _ := newTestRouter(t, false)

	created := do(h, http.MethodPost, "/expenses", `{"amount":"3","category":"Books","date":"2025-02-01"}`, nil)
	require.Equal(t, http.StatusCreated, created.Code)

	got := do(h, http.MethodGet, "/expenses/1", "", nil)
	require.Equal(t, http.StatusOK, got.Code)
	var record map[string]any
	require.NoError(t, json.NewDecoder(got.Body).Decode(&record))
	record["amount"] = "4.25"
	body, err := json.Marshal(record)
	require.NoError(t, err)

	put := do(h, http.MethodPut, "/expenses/1", string(body), nil)
	require.Equal(t, http.StatusOK, put.Code, put.Body.String())
	assert.Contains(t, put.Body.String(), `"amount":"4.25"`)
}
