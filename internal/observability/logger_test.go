package observability

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	l := NewLoggerTo(&buf, dir)

	l.LogRequest("chat-1", "req-1", "!resolver1", "gemini_studio", "¿interés?")
	l.LogFailure("chat-1", "req-1", "execute", errors.New("boom"))

	var events []Event
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var evt Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &evt))
		events = append(events, evt)
	}
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeRequest, events[0].Type)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, EventTypeFailure, events[1].Type)
	assert.False(t, events[1].Timestamp.IsZero())

	_, err := os.Stat(filepath.Join(dir, "llm.jsonl"))
	assert.True(t, os.IsNotExist(err), "only llm events go to the transcript file")
}

func TestLoggerLLMTranscript(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	l := NewLoggerTo(&buf, dir)

	l.LogLLM("chat-1", "req-1", "kimi", "prompt", `{"interpretation": "x"}`)

	data, err := os.ReadFile(filepath.Join(dir, "llm.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"provider":"kimi"`)
}

func TestStatusCounters(t *testing.T) {
	_, solvedBefore, failedBefore := Counters()

	Begin("problem")
	role, task, _ := GetStatus()
	assert.Equal(t, RoleSolving, role)
	assert.Equal(t, "problem", task)

	End(true)
	Begin("other")
	End(false)

	inFlight, solved, failed := Counters()
	assert.Equal(t, 0, inFlight)
	assert.Equal(t, solvedBefore+1, solved)
	assert.Equal(t, failedBefore+1, failed)

	role, _, _ = GetStatus()
	assert.Equal(t, RoleIdle, role)
	assert.Contains(t, StatusLine(), "solved=")
}
