package echo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echo "github.com/lifeos/echo"
	"github.com/lifeos/echo/executor"
	"github.com/lifeos/echo/history"
	"github.com/lifeos/echo/memory"
	"github.com/lifeos/echo/router"
)

func TestEcho_ChatFlow(t *testing.T) {
	e := echo.New()

	gmail := executor.NewMockExecutor("gmail")
	gmail.AddResponse("check my inbox", "You have 2 unread emails.")
	e.RegisterAgent("gmail", gmail)

	reply, err := e.Chat(context.Background(), "u1", "@mail check my inbox")
	require.NoError(t, err)
	assert.Equal(t, "You have 2 unread emails.", reply.Text)
	assert.Equal(t, "gmail", reply.Agent)
	assert.True(t, reply.Routed)

	turns, err := e.History(context.Background(), "u1", "gmail", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "check my inbox", turns[0].Content)
	assert.Equal(t, "You have 2 unread emails.", turns[1].Content)

	digest, err := e.WorkingMemory(context.Background(), "u1", "gmail")
	require.NoError(t, err)
	assert.Contains(t, digest, "user: check my inbox")
	assert.Contains(t, digest, "assistant: You have 2 unread emails.")

	require.NoError(t, e.ClearMemory(context.Background(), "u1", "gmail"))
	require.NoError(t, e.ClearMemory(context.Background(), "u1", "gmail"))

	turns, err = e.History(context.Background(), "u1", "gmail", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)

	digest, err = e.WorkingMemory(context.Background(), "u1", "gmail")
	require.NoError(t, err)
	assert.Equal(t, memory.NoHistorySentinel, digest)
}

func TestEcho_DefaultDirectory(t *testing.T) {
	e := echo.New()

	assert.Equal(t, []router.AgentInfo{
		{Name: "calendar", Implemented: false},
		{Name: "gmail", Implemented: false},
		{Name: "memory", Implemented: false},
	}, e.Directory())

	reply, err := e.Chat(context.Background(), "u1", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "The gmail agent is coming soon.", reply.Text)
	assert.Equal(t, "gmail", reply.Agent)
}

func TestEcho_Overrides(t *testing.T) {
	e := echo.New(func(o *echo.Options) {
		o.DefaultAgent = "notes"
		o.Aliases = map[string]string{"n": "notes"}
		o.HistoryLimit = 2
		o.ComingSoonTemplate = "%s is offline."
	})

	notes := executor.NewMockExecutor("notes")
	e.RegisterAgent("notes", notes)

	for _, msg := range []string{"@n one", "two", "three"} {
		_, err := e.Chat(context.Background(), "u1", msg)
		require.NoError(t, err)
	}

	turns, err := e.History(context.Background(), "u1", "notes", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "three", turns[0].Content)
	assert.Equal(t, "Mock reply to: three", turns[1].Content)

	reply, err := e.ChatWith(context.Background(), "u1", "calendar", "hi")
	require.NoError(t, err)
	assert.Equal(t, "calendar is offline.", reply.Text)
}

func TestEcho_CustomStore(t *testing.T) {
	backend := history.NewInMemoryStore()

	e := echo.New(func(o *echo.Options) {
		o.Store = backend
	})
	e.RegisterAgent("gmail", executor.NewMockExecutor("gmail"))

	_, err := e.Chat(context.Background(), "u1", "hi")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.Len())
}

func TestEcho_Handler(t *testing.T) {
	e := echo.New()
	e.RegisterAgent("gmail", executor.NewMockExecutor("gmail"))

	srv := e.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(`{"user_id":"u1","message":"hi"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"Mock reply to: hi","agent":"gmail","routed":false}`, w.Body.String())
}
