package gateway

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/mcp-agent-gate/pkg/approval"
	"github.com/txn2/mcp-agent-gate/pkg/audit"
	"github.com/txn2/mcp-agent-gate/pkg/auth"
	"github.com/txn2/mcp-agent-gate/pkg/catalog"
)

const gwTestUser = "user-1"

func newTestGateway(t *testing.T) (*Gateway, *audit.MemoryLogger) {
	t.Helper()
	log := audit.NewMemoryLogger()
	g := New(Config{
		Approvals: approval.Config{Timeout: time.Second},
	}, WithAuditLogger(log))
	t.Cleanup(func() { _ = g.Close() })

	g.Catalog().RegisterAll([]*catalog.Tool{
		{Name: "documents_list", Description: "List documents"},
		{Name: "documents_delete", Description: "Delete a document", Permissions: []string{"documents:delete"}},
	})
	return g, log
}

func testUser(perms ...string) *auth.UserContext {
	return &auth.UserContext{UserID: gwTestUser, Permissions: perms}
}

func TestGateway_ResolveSession(t *testing.T) {
	g, _ := newTestGateway(t)
	uc := testUser()

	sess := g.ResolveSession("", uc)
	require.NotNil(t, sess)
	assert.Equal(t, gwTestUser, sess.UserID)

	again := g.ResolveSession(sess.ID, uc)
	assert.Equal(t, sess.ID, again.ID)

	other := g.ResolveSession(sess.ID, &auth.UserContext{UserID: "user-2"})
	assert.NotEqual(t, sess.ID, other.ID, "session must not cross users")
}

func TestGateway_ToolsFor(t *testing.T) {
	g, _ := newTestGateway(t)
	uc := testUser()
	sess := g.ResolveSession("", uc)

	result := g.ToolsFor(sess, uc)

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	assert.True(t, names["documents_list"])
	assert.True(t, names[catalog.SearchToolName])
	assert.False(t, names["documents_delete"], "unpermitted tools stay hidden")
}

func TestGateway_GuardInvocation_Allowed(t *testing.T) {
	g, log := newTestGateway(t)
	uc := testUser()
	sess := g.ResolveSession("", uc)

	ok := g.GuardInvocation(context.Background(), sess, uc, "documents_list", nil)
	assert.True(t, ok)

	events := log.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.DecisionAllowed, events[0].Decision)
	assert.Empty(t, g.Gate().PendingForSession(sess.ID))
}

func TestGateway_GuardInvocation_UnknownOrForbidden(t *testing.T) {
	g, log := newTestGateway(t)
	uc := testUser()
	sess := g.ResolveSession("", uc)

	assert.False(t, g.GuardInvocation(context.Background(), sess, uc, "nonexistent", nil))
	assert.False(t, g.GuardInvocation(context.Background(), sess, uc, "documents_delete", nil))

	for _, event := range log.Events() {
		assert.Equal(t, audit.DecisionDenied, event.Decision)
	}
}

func TestGateway_GuardInvocation_ApprovalFlow(t *testing.T) {
	g, log := newTestGateway(t)
	uc := testUser("documents:delete")
	sess := g.ResolveSession("", uc)

	outcome := make(chan bool, 1)
	go func() {
		outcome <- g.GuardInvocation(context.Background(), sess, uc, "documents_delete", map[string]any{"id": "d1"})
	}()

	var pending []*approval.Confirmation
	require.Eventually(t, func() bool {
		pending = g.Gate().PendingForSession(sess.ID)
		return len(pending) == 1
	}, time.Second, 5*time.Millisecond)

	require.True(t, g.Gate().Approve(pending[0].ID))
	assert.True(t, <-outcome)

	events := log.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.DecisionApproved, events[0].Decision)
	assert.Equal(t, pending[0].ID, events[0].ConfirmationID)
}

func TestGateway_GuardInvocation_Timeout(t *testing.T) {
	log := audit.NewMemoryLogger()
	g := New(Config{
		Approvals: approval.Config{Timeout: 30 * time.Millisecond},
	}, WithAuditLogger(log))
	t.Cleanup(func() { _ = g.Close() })
	g.Catalog().Register(&catalog.Tool{Name: "documents_delete", Description: "Delete a document"})

	uc := testUser()
	sess := g.ResolveSession("", uc)

	ok := g.GuardInvocation(context.Background(), sess, uc, "documents_delete", nil)
	assert.False(t, ok)

	events := log.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.DecisionExpired, events[0].Decision)
}

func TestGateway_GuardInvocation_CallerCancelled(t *testing.T) {
	g, log := newTestGateway(t)
	uc := testUser("documents:delete")
	sess := g.ResolveSession("", uc)

	ctx, cancel := context.WithCancel(context.Background())
	outcome := make(chan bool, 1)
	go func() {
		outcome <- g.GuardInvocation(ctx, sess, uc, "documents_delete", nil)
	}()

	require.Eventually(t, func() bool {
		return len(g.Gate().PendingForSession(sess.ID)) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.False(t, <-outcome)

	events := log.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.DecisionDenied, events[0].Decision)
	assert.Empty(t, g.Gate().PendingForSession(sess.ID), "cancellation resolves the record")
}

func TestGateway_StartAndClose(t *testing.T) {
	g := New(Config{CleanupInterval: 10 * time.Millisecond})
	g.Start()
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, g.Close())
}

func TestGateway_TokenVerifier(t *testing.T) {
	g := New(Config{
		Auth: AuthConfig{
			SigningKey: "test-key",
			RoleGrants: map[string][]string{"editor": {"documents:*"}},
		},
	})
	t.Cleanup(func() { _ = g.Close() })

	v := g.TokenVerifier()
	require.NotNil(t, v)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sessions:
  ttl: 10m
  max_per_user: 3
approvals:
  timeout: 90s
token_budget: 5000
auth:
  signing_key: secret
  role_grants:
    editor:
      - posts:*
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, 3, cfg.Sessions.MaxPerUser)
	assert.Equal(t, 90*time.Second, cfg.Approvals.Timeout)
	assert.Equal(t, 5000, cfg.TokenBudget)
	assert.Equal(t, []string{"posts:*"}, cfg.Auth.RoleGrants["editor"])
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token_budget: -1\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
