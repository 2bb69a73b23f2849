package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifeos/echo/executor"
)

func TestDirectory_Lookup_Unimplemented(t *testing.T) {
	dir := NewDirectory("gmail", testAliases())

	entry := dir.Lookup("calendar")

	assert.False(t, entry.Implemented())
	assert.Equal(t, "calendar", entry.Agent())
	assert.Nil(t, entry.Executor())
	assert.Equal(t, "The calendar agent is coming soon.", entry.CannedReply())
}

func TestDirectory_Lookup_Implemented(t *testing.T) {
	dir := NewDirectory("gmail", testAliases())
	mock := executor.NewMockExecutor("gmail-mock")
	dir.Register("gmail", mock)

	entry := dir.Lookup("gmail")

	assert.True(t, entry.Implemented())
	assert.Equal(t, "gmail", entry.Agent())
	assert.Equal(t, mock, entry.Executor())
	assert.Empty(t, entry.CannedReply())
}

func TestDirectory_Register_Replaces(t *testing.T) {
	dir := NewDirectory("gmail", testAliases())
	first := executor.NewMockExecutor("first")
	second := executor.NewMockExecutor("second")

	dir.Register("gmail", first)
	dir.Register("gmail", second)

	assert.Equal(t, second, dir.Lookup("gmail").Executor())
}

func TestDirectory_Dispatch(t *testing.T) {
	dir := NewDirectory("gmail", testAliases())
	mock := executor.NewMockExecutor("calendar-mock")
	dir.Register("calendar", mock)

	entry, cleaned := dir.Dispatch("@cal schedule lunch")

	assert.True(t, entry.Implemented())
	assert.Equal(t, "calendar", entry.Agent())
	assert.Equal(t, "schedule lunch", cleaned)
}

func TestDirectory_Dispatch_UnknownAgent(t *testing.T) {
	dir := NewDirectory("gmail", testAliases())

	entry, cleaned := dir.Dispatch("@unknownthing do x")

	assert.False(t, entry.Implemented())
	assert.Equal(t, "unknownthing", entry.Agent())
	assert.Equal(t, "The unknownthing agent is coming soon.", entry.CannedReply())
	assert.Equal(t, "do x", cleaned)
}

func TestDirectory_ComingSoonTemplate(t *testing.T) {
	dir := NewDirectory("gmail", testAliases(), func(o *DirectoryOptions) {
		o.ComingSoonTemplate = "%s is not wired up yet"
	})

	entry := dir.Lookup("memory")

	assert.Equal(t, "memory is not wired up yet", entry.CannedReply())
}

func TestDirectory_Agents(t *testing.T) {
	dir := NewDirectory("gmail", testAliases())
	dir.Register("gmail", executor.NewMockExecutor("gmail-mock"))
	dir.Register("notes", executor.NewMockExecutor("notes-mock"))

	agents := dir.Agents()

	assert.Equal(t, []AgentInfo{
		{Name: "calendar", Implemented: false},
		{Name: "gmail", Implemented: true},
		{Name: "memory", Implemented: false},
		{Name: "notes", Implemented: true},
	}, agents)
}

func TestDirectory_Resolve(t *testing.T) {
	dir := NewDirectory("gmail", testAliases())

	assert.Equal(t, "gmail", dir.Resolve("mail"))
	assert.Equal(t, "gmail", dir.DefaultAgent())
}
