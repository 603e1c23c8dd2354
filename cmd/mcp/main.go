package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sinotrade/mcp-server-shioaji/internal/broker"
	"github.com/Sinotrade/mcp-server-shioaji/internal/config"
	mcpserver "github.com/Sinotrade/mcp-server-shioaji/internal/mcp"
	"github.com/Sinotrade/mcp-server-shioaji/internal/session"
	"github.com/Sinotrade/mcp-server-shioaji/pkg/tracing"
)

const defaultMCPHTTPMaxBodyBytes int64 = 1 << 20 // 1MiB

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	newBrokerFunc  = func(cfg *config.Config) broker.Session {
		return broker.NewClient(broker.ClientConfig{
			BaseURL:    cfg.GatewayURL,
			Timeout:    time.Duration(cfg.GatewayTimeoutSecs) * time.Second,
			Simulation: cfg.ShioajiSimulation,
		})
	}
	newManagerFunc    = session.NewManager
	newMCPServerFunc  = mcpserver.NewServer
	newMCPHandlerFunc = mcpserver.NewHTTPTransportHandler
	runStdioFunc      = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
	fatalFunc            = log.Fatalf
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiKey, secretKey, err := cfg.Credentials()
	if err != nil {
		fatalFunc("missing credentials: %v", err)
		return
	}

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		fatalFunc("failed to initialize tracer: %v", err)
		return
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	brokerSession := newBrokerFunc(cfg)
	mgr := newManagerFunc(tracer, brokerSession, apiKey, secretKey,
		time.Duration(cfg.ContractsTimeoutSecs)*time.Second)

	if err := mgr.Acquire(ctx); err != nil {
		mgr.Release(ctx)
		fatalFunc("failed to acquire broker session: %v", err)
		return
	}
	defer mgr.Release(ctx)

	mcpSrv := newMCPServerFunc(tracer, brokerSession, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	})

	transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	switch transport {
	case "", "stdio":
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			mgr.Release(ctx)
			fatalFunc("mcp stdio server failed: %v", err)
			return
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, mcpSrv); err != nil {
			mgr.Release(ctx)
			fatalFunc("mcp http server failed: %v", err)
			return
		}
	default:
		mgr.Release(ctx)
		fatalFunc("unsupported MCP_TRANSPORT: %s", cfg.MCPTransport)
		return
	}
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, mcpSrv *sdkmcp.Server) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}

	handler := newMCPHandlerFunc(mcpSrv, mcpserver.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    defaultMCPHTTPMaxBodyBytes,
	})

	addr := net.JoinHostPort(cfg.MCPHTTPBind, fmt.Sprintf("%d", cfg.MCPHTTPPort))
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Printf("mcp http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
