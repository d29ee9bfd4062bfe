package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Builders(t *testing.T) {
	event := NewEvent("documents_delete").
		WithSession("sess-1", "user-1").
		WithArguments(map[string]any{"id": "d1", "token": "s3cret"}).
		WithConfirmation("conf-1", "modal").
		WithDecision(DecisionApproved, 1500*time.Millisecond)

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "sess-1", event.SessionID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "documents_delete", event.ToolName)
	assert.Equal(t, "conf-1", event.ConfirmationID)
	assert.Equal(t, DecisionApproved, event.Decision)
	assert.Equal(t, int64(1500), event.WaitedMS)
	assert.Equal(t, "d1", event.Arguments["id"])
	assert.Equal(t, "[REDACTED]", event.Arguments["token"])
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, NewEvent("a").ID, NewEvent("a").ID)
}

func TestSanitizeArguments(t *testing.T) {
	assert.Nil(t, SanitizeArguments(nil))

	out := SanitizeArguments(map[string]any{
		"password": "hunter2",
		"api_key":  "k",
		"name":     "ok",
	})
	assert.Equal(t, "[REDACTED]", out["password"])
	assert.Equal(t, "[REDACTED]", out["api_key"])
	assert.Equal(t, "ok", out["name"])
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	event := NewEvent("documents_delete").
		WithSession("sess-1", "user-1").
		WithDecision(DecisionDenied, 0)
	require.NoError(t, logger.Log(context.Background(), event))

	out := buf.String()
	assert.Contains(t, out, "documents_delete")
	assert.Contains(t, out, "denied")
	assert.Contains(t, out, "sess-1")
}

func TestMemoryLogger(t *testing.T) {
	logger := NewMemoryLogger()
	require.NoError(t, logger.Log(context.Background(), NewEvent("a")))
	require.NoError(t, logger.Log(context.Background(), NewEvent("b")))

	events := logger.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ToolName)
	assert.Equal(t, "b", events[1].ToolName)
}
