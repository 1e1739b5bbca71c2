package skills

import (
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestMCPClientToolCache(t *testing.T) {
	c := NewMCPClient(nil, WithToolCacheTTL(time.Minute))

	if cached := c.cachedTools(); cached != nil {
		t.Fatalf("expected empty cache, got %v", cached)
	}

	tools := []mcp.Tool{{Name: "analyze_code"}, {Name: "diagnose_system"}}
	c.storeTools(tools)

	cached := c.cachedTools()
	if len(cached) != 2 || cached[0].Name != "analyze_code" {
		t.Fatalf("unexpected cached tools: %v", cached)
	}

	// Mutating the returned slice must not leak into the cache.
	cached[0].Name = "mutated"
	if again := c.cachedTools(); again[0].Name != "analyze_code" {
		t.Fatalf("cache aliased caller slice: %v", again)
	}
}

func TestMCPClientToolCacheExpiry(t *testing.T) {
	c := NewMCPClient(nil, WithToolCacheTTL(time.Minute))
	c.storeTools([]mcp.Tool{{Name: "analyze_code"}})
	c.cacheExpiry = time.Now().Add(-time.Second)

	if cached := c.cachedTools(); cached != nil {
		t.Fatalf("expected expired cache to miss, got %v", cached)
	}
}

func TestMCPClientToolCacheDisabled(t *testing.T) {
	c := NewMCPClient(nil, WithToolCacheTTL(0))
	c.storeTools([]mcp.Tool{{Name: "analyze_code"}})
	if cached := c.cachedTools(); cached != nil {
		t.Fatalf("expected caching disabled, got %v", cached)
	}
}
