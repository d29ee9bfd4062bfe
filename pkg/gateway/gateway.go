// Package gateway composes the session manager, tool catalog, and approval
// gate into one request pipeline: resolve the caller's session, expose a
// budgeted tool list for their permissions, and hold destructive invocations
// until a human decides.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/txn2/mcp-agent-gate/pkg/approval"
	"github.com/txn2/mcp-agent-gate/pkg/audit"
	"github.com/txn2/mcp-agent-gate/pkg/auth"
	"github.com/txn2/mcp-agent-gate/pkg/catalog"
	"github.com/txn2/mcp-agent-gate/pkg/session"
)

// Gateway owns the policy components and their lifecycle.
type Gateway struct {
	cfg      Config
	sessions *session.Manager
	catalog  *catalog.Catalog
	gate     *approval.Gate
	auditLog audit.Logger
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithAuditLogger sets the audit sink. The default logs through slog.
func WithAuditLogger(logger audit.Logger) Option {
	return func(g *Gateway) { g.auditLog = logger }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// New creates a gateway. Call Start to run background maintenance and Close
// to release it.
func New(cfg Config, opts ...Option) *Gateway {
	cfg = cfg.withDefaults()
	g := &Gateway{
		cfg:      cfg,
		sessions: session.NewManager(cfg.Sessions),
		catalog:  catalog.New(),
		gate:     approval.NewGate(cfg.Approvals),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.auditLog == nil {
		g.auditLog = audit.NewSlogLogger(g.logger)
	}
	return g
}

// Sessions returns the session manager.
func (g *Gateway) Sessions() *session.Manager { return g.sessions }

// Catalog returns the tool catalog.
func (g *Gateway) Catalog() *catalog.Catalog { return g.catalog }

// Gate returns the approval gate.
func (g *Gateway) Gate() *approval.Gate { return g.gate }

// TokenVerifier builds the bearer-token verifier for the configured auth
// settings.
func (g *Gateway) TokenVerifier() *auth.TokenVerifier {
	extractor := auth.DefaultClaimsExtractor()
	if g.cfg.Auth.RoleClaimPath != "" {
		extractor.RoleClaimPath = g.cfg.Auth.RoleClaimPath
	}
	if g.cfg.Auth.PermissionClaimPath != "" {
		extractor.PermissionClaimPath = g.cfg.Auth.PermissionClaimPath
	}
	extractor.PermissionPrefix = g.cfg.Auth.PermissionPrefix
	extractor.RoleGrants = g.cfg.Auth.RoleGrants
	return auth.NewTokenVerifier([]byte(g.cfg.Auth.SigningKey), extractor)
}

// ResolveSession returns the caller's session, creating one when the
// supplied identifier is absent, expired, or owned by someone else. The
// session's expiry is pushed out on every resolution.
func (g *Gateway) ResolveSession(sessionID string, uc *auth.UserContext) *session.Session {
	sess := g.sessions.GetOrCreate(sessionID, uc.UserID, nil)
	g.sessions.Extend(sess.ID)
	return sess
}

// ToolsFor returns the budgeted tool selection for the caller's permission
// set.
func (g *Gateway) ToolsFor(sess *session.Session, uc *auth.UserContext) catalog.Optimized {
	return g.catalog.GetOptimized(sess, uc.Permissions, g.cfg.TokenBudget)
}

// GuardInvocation decides whether the invocation may proceed. Tools the
// caller cannot see are refused outright; classified high-impact tools
// suspend until an approval, a denial, or a timeout resolves them. Every
// outcome is written to the audit log.
func (g *Gateway) GuardInvocation(ctx context.Context, sess *session.Session, uc *auth.UserContext, toolName string, args map[string]any) bool {
	event := audit.NewEvent(toolName).
		WithSession(sess.ID, uc.UserID).
		WithArguments(args)

	if toolName != catalog.SearchToolName && !g.catalog.Allowed(toolName, uc.Permissions) {
		_ = g.auditLog.Log(ctx, event.WithDecision(audit.DecisionDenied, 0))
		return false
	}

	conf, result := g.gate.Request(sess.ID, toolName, args, "")
	if conf == nil {
		_ = g.auditLog.Log(ctx, event.WithDecision(audit.DecisionAllowed, 0))
		return true
	}
	event.WithConfirmation(conf.ID, string(conf.Level))
	g.logger.Info("invocation held for approval",
		"session_id", sess.ID, "tool", toolName, "confirmation_id", conf.ID)

	start := time.Now()
	select {
	case approved := <-result:
		decision := audit.DecisionDenied
		if approved {
			decision = audit.DecisionApproved
		} else if rec := g.gate.Get(conf.ID); rec != nil && rec.Status == approval.StatusExpired {
			decision = audit.DecisionExpired
		}
		_ = g.auditLog.Log(ctx, event.WithDecision(decision, time.Since(start)))
		return approved
	case <-ctx.Done():
		// The caller is gone; resolve the record so a later human decision
		// lands on a terminal status.
		g.gate.Deny(conf.ID)
		_ = g.auditLog.Log(ctx, event.WithDecision(audit.DecisionDenied, time.Since(start)))
		return false
	}
}

// Start runs the session sweep and the approval-gate cleanup.
func (g *Gateway) Start() {
	g.sessions.StartSweep()

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.done = make(chan struct{})

	go func() {
		defer close(g.done)

		ticker := time.NewTicker(g.cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.gate.Cleanup()
			}
		}
	}()
}

// Close stops background maintenance. It is safe to call Close even if
// Start was never called.
func (g *Gateway) Close() error {
	if g.cancel != nil {
		g.cancel()
		<-g.done
		g.cancel = nil
	}
	return g.sessions.Close()
}
