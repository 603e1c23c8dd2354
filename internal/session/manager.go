// Package session bounds the brokerage session's lifetime to the server
// process: login and contract download at startup, best-effort logout on
// every exit path.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sinotrade/mcp-server-shioaji/internal/broker"
	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

const defaultContractsTimeout = 120 * time.Second

type Manager struct {
	tracer           trace.Tracer
	session          broker.Session
	apiKey           string
	secretKey        string
	contractsTimeout time.Duration

	releaseOnce sync.Once
}

func NewManager(tracer trace.Tracer, session broker.Session, apiKey, secretKey string, contractsTimeout time.Duration) *Manager {
	if contractsTimeout <= 0 {
		contractsTimeout = defaultContractsTimeout
	}
	return &Manager{
		tracer:           tracer,
		session:          session,
		apiKey:           apiKey,
		secretKey:        secretKey,
		contractsTimeout: contractsTimeout,
	}
}

// Acquire logs the session in and downloads the contract set, waiting at most
// the configured contract-sync bound. On any failure the session must not be
// served; the caller aborts startup after calling Release.
func (m *Manager) Acquire(ctx context.Context) error {
	ctx, span := m.startSpan(ctx, "session.acquire")
	defer span.End()

	log.Println("Logging in to Shioaji...")
	if err := m.session.Login(ctx, m.apiKey, m.secretKey); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Println("Successfully logged in to Shioaji")

	log.Println("Fetching contracts...")
	syncCtx, cancel := context.WithTimeout(ctx, m.contractsTimeout)
	defer cancel()
	if err := m.session.FetchContracts(syncCtx); err != nil {
		// Only the sync bound itself reports ErrTimeout. A deadline
		// inherited from the caller's ctx is the caller's failure.
		if errors.Is(err, context.DeadlineExceeded) && syncCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%w: contract sync exceeded %s", domain.ErrTimeout, m.contractsTimeout)
		}
		return fmt.Errorf("fetch contracts: %w", err)
	}
	log.Println("Successfully fetched contracts")
	return nil
}

// Release logs the session out. Safe to call more than once and on a session
// that never finished acquiring; only the first call reaches the backend. A
// logout failure is logged, never returned.
func (m *Manager) Release(ctx context.Context) {
	m.releaseOnce.Do(func() {
		ctx, span := m.startSpan(ctx, "session.release")
		defer span.End()

		log.Println("Logging out from Shioaji...")
		if err := m.session.Logout(ctx); err != nil {
			log.Printf("Error during Shioaji logout: %v", err)
			return
		}
		log.Println("Successfully logged out from Shioaji")
	})
}

func (m *Manager) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if m.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return m.tracer.Start(ctx, name)
}
