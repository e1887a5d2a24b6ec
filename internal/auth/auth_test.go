package auth

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenHandlerRelaysToken(t *testing.T) {
	flow := NewFlow()

	req := httptest.NewRequest("POST", "/token", strings.NewReader(`{"token":"abc123"}`))
	rec := httptest.NewRecorder()

	flow.handleToken(rec, req)

	assert.Equal(t, 200, rec.Code)

	select {
	case token := <-flow.tokens:
		assert.Equal(t, "abc123", token)
	default:
		t.Fatal("no token was delivered to the flow")
	}
}

func TestTokenHandlerRejectsBadBody(t *testing.T) {
	flow := NewFlow()

	req := httptest.NewRequest("POST", "/token", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	flow.handleToken(rec, req)

	assert.Equal(t, 400, rec.Code)
	assert.Empty(t, flow.tokens)
}

func TestCallbackPageRelaysFragment(t *testing.T) {
	flow := NewFlow()

	req := httptest.NewRequest("GET", "/callback", nil)
	rec := httptest.NewRecorder()

	flow.handleCallback(rec, req)

	require.Equal(t, 200, rec.Code)
	// The page must pull the token out of the URL fragment and POST it back
	body := rec.Body.String()
	assert.Contains(t, body, "access_token")
	assert.Contains(t, body, "/token")
}

func TestLoginURLContainsClientID(t *testing.T) {
	flow := NewFlow()
	assert.Contains(t, flow.LoginURL(), "client_id="+clientID)
	assert.Contains(t, flow.LoginURL(), "response_type=token")
}
