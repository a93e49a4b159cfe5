package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)

	token, err := tokens.Issue("ana")
	require.NoError(t, err)

	username, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", username)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issuedAt }
	token, err := tokens.Issue("ana")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = tokens.Verify(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_WrongSecret(t *testing.T) {
	token, err := NewTokens("one", time.Minute).Issue("ana")
	require.NoError(t, err)

	_, err = NewTokens("two", time.Minute).Verify(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

type whoamiOutput struct {
	Body struct {
		Username string `json:"username"`
	}
}

func newAuthTestAPI(t *testing.T, tokens *Tokens, enforce bool) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	api.UseMiddleware(Middleware(api, tokens, enforce))

	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Security:    []map[string][]string{{SecurityScheme: {}}},
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		out := &whoamiOutput{}
		out.Body.Username, _ = Username(ctx)
		return out, nil
	})
	return api
}

func TestMiddleware_Enforced(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	api := newAuthTestAPI(t, tokens, true)

	resp := api.Get("/whoami")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/whoami", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	token, err := tokens.Issue("ana")
	require.NoError(t, err)
	resp = api.Get("/whoami", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"username":"ana"}`, resp.Body.String())
}

func TestMiddleware_NotEnforced(t *testing.T) {
	api := newAuthTestAPI(t, NewTokens("secret", time.Minute), false)

	resp := api.Get("/whoami")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"username":""}`, resp.Body.String())
}
