// Package mcp exposes the task list over the Model Context Protocol (stdio).
package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/tally/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var commandToolDef = mcp.NewTool("task_command",
	mcp.WithDescription("Run one tally command line, e.g. \"todo Buy milk\", \"deadline Report /by 2024-12-01 15:00\", "+
		"\"event Sync /from Mon 2pm /to 4pm\", \"mark 2\", \"unmark 2\", \"delete 3\" or \"list\". "+
		"Task numbers are 1-based and shift down after a delete."),
	mcp.WithString("line", mcp.Required(), mcp.Description("The command line to execute")),
)

var listToolDef = mcp.NewTool("task_list",
	mcp.WithDescription("List all tasks in order with their 1-based numbers."),
)

var reportToolDef = mcp.NewTool("task_report",
	mcp.WithDescription("Render the task list as a Markdown checklist or HTML."),
	mcp.WithString("format", mcp.Enum("markdown", "html"), mcp.Description("Output format (default markdown)")),
	mcp.WithString("title", mcp.Description("Report heading (default \"Tasks\")")),
)

var exportToolDef = mcp.NewTool("task_export",
	mcp.WithDescription("Export the task list to a JSONL file in the exports directory or an allowed path."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path (default: exports/tasks-<timestamp>.jsonl)")),
)

var importToolDef = mcp.NewTool("task_import",
	mcp.WithDescription("Import tasks from a tally JSONL export. All records must be valid or nothing is imported."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
	mcp.WithString("mode", mcp.Enum("append", "replace"), mcp.Description("append (default) or replace")),
)

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"task_command": {
		def:     commandToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommand },
	},
	"task_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"task_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
	"task_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"task_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns the names in the list that are not tools.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the tally tools registered, minus
// any listed in cfg.DisabledTools.
func NewServer(h *Handlers, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tally",
		version,
		server.WithToolCapabilities(true),
	)

	disabled := make(map[string]bool)
	if cfg != nil {
		for _, name := range cfg.DisabledTools {
			disabled[name] = true
		}
	}

	for _, name := range AllToolNames() {
		if disabled[name] {
			continue
		}
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the tools over stdio until stdin closes.
func Run(h *Handlers, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(h, cfg, version))
}
