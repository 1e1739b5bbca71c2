// Copyright 2026 © The Metis Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultCallTimeout = 10 * time.Second
	defaultToolsTTL    = 30 * time.Second
)

// ClientOption customizes the MCP client wrapper.
type ClientOption func(*MCPClient)

// WithCallTimeout sets the per-request timeout.
func WithCallTimeout(timeout time.Duration) ClientOption {
	return func(c *MCPClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithToolCacheTTL sets the tool discovery cache TTL. Use 0 to disable caching.
func WithToolCacheTTL(ttl time.Duration) ClientOption {
	return func(c *MCPClient) {
		if ttl >= 0 {
			c.cacheTTL = ttl
		}
	}
}

// MCPClient wraps an mcp-go client as a ToolCaller with per-request timeouts
// and cached tool discovery. Transport retries belong to MCPExecutor, not
// here.
type MCPClient struct {
	mcpClient client.MCPClient
	timeout   time.Duration
	cacheTTL  time.Duration

	mu          sync.Mutex
	toolsCache  []mcp.Tool
	cacheExpiry time.Time
}

// NewMCPClient wraps the given MCP client implementation.
func NewMCPClient(c client.MCPClient, opts ...ClientOption) *MCPClient {
	wrapped := &MCPClient{
		mcpClient: c,
		timeout:   defaultCallTimeout,
		cacheTTL:  defaultToolsTTL,
	}
	for _, opt := range opts {
		opt(wrapped)
	}
	return wrapped
}

// NewStdioMCPClient starts an MCP server process, initializes the session,
// and wraps the connection.
func NewStdioMCPClient(ctx context.Context, command string, args []string, opts ...ClientOption) (*MCPClient, error) {
	if command == "" {
		return nil, errors.New("mcp server command is required")
	}
	stdioClient, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, err
	}
	if err := stdioClient.Start(ctx); err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "metis-client",
		Version: "0.1.0",
	}
	if _, err := stdioClient.Initialize(initCtx, initRequest); err != nil {
		stdioClient.Close()
		return nil, err
	}
	return NewMCPClient(stdioClient, opts...), nil
}

// ListTools retrieves the tools available on the server.
func (c *MCPClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if cached := c.cachedTools(); cached != nil {
		return cached, nil
	}
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	resp, err := c.mcpClient.ListTools(reqCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	c.storeTools(resp.Tools)
	return resp.Tools, nil
}

// CallTool executes a tool on the server. It implements ToolCaller.
func (c *MCPClient) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.mcpClient.CallTool(reqCtx, req)
}

// Close closes the underlying connection.
func (c *MCPClient) Close() error {
	return c.mcpClient.Close()
}

func (c *MCPClient) cachedTools() []mcp.Tool {
	if c.cacheTTL == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.toolsCache) == 0 || time.Now().After(c.cacheExpiry) {
		return nil
	}
	out := make([]mcp.Tool, len(c.toolsCache))
	copy(out, c.toolsCache)
	return out
}

func (c *MCPClient) storeTools(tools []mcp.Tool) {
	if c.cacheTTL == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toolsCache = make([]mcp.Tool, len(tools))
	copy(c.toolsCache, tools)
	c.cacheExpiry = time.Now().Add(c.cacheTTL)
}

func (c *MCPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

var _ ToolCaller = (*MCPClient)(nil)
