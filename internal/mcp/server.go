package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/holocron/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"planet_initialize": {
		def:     initializeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInitialize },
	},
	"planet_fetch_page": {
		def:     fetchPageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetchPage },
	},
	"planet_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"planet_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"planet_enrich": {
		def:     enrichToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEnrich },
	},
	"planet_cursor": {
		def:     cursorToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCursor },
	},
	"planet_destroy": {
		def:     destroyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDestroy },
	},
}

// AllToolNames returns every valid tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the planet tools registered.
// Tools listed in DisabledTools are skipped.
func NewServer(deps ops.Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"holocron",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(deps)

	disabled := make(map[string]bool)
	if deps.Config != nil {
		for _, name := range deps.Config.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(deps ops.Deps, version string) error {
	s := NewServer(deps, version)
	return server.ServeStdio(s)
}
