package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/interp"
	"github.com/hpungsan/tally/internal/logging"
	"github.com/hpungsan/tally/internal/ops"
	"github.com/hpungsan/tally/internal/task"
)

// Handlers holds dependencies for MCP tool handlers.
//
// The interpreter is not safe for concurrent use and the MCP transport may
// dispatch calls in parallel, so every handler holds mu for its whole run.
type Handlers struct {
	mu     sync.Mutex
	interp *interp.Interpreter
	saver  ops.Saver
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance. saver may be nil.
func NewHandlers(in *interp.Interpreter, saver ops.Saver, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		interp: in,
		saver:  saver,
		cfg:    cfg,
		logger: logging.Module(logger, "mcp"),
	}
}

// CommandRequest represents the arguments for task_command.
type CommandRequest struct {
	Line string `json:"line"`
}

// ReportRequest represents the arguments for task_report.
type ReportRequest struct {
	Format string `json:"format,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ExportRequest represents the arguments for task_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for task_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// TaskView is one task as returned by task_list and task_command.
type TaskView struct {
	Number int    `json:"number,omitempty"`
	Text   string `json:"text"`
	task.ExportRecord
}

// CommandOutput is the task_command result.
type CommandOutput struct {
	Command      string    `json:"command"`
	Message      string    `json:"message"`
	Task         *TaskView `json:"task,omitempty"`
	Count        int       `json:"count"`
	Changed      bool      `json:"changed"`
	Saved        bool      `json:"saved"`
	StorageError string    `json:"storage_error,omitempty"`
}

// ListOutput is the task_list result.
type ListOutput struct {
	Tasks []TaskView `json:"tasks"`
	Count int        `json:"count"`
}

func newTaskView(t task.Task, number int) TaskView {
	return TaskView{Number: number, Text: t.String(), ExportRecord: task.ToExportRecord(t)}
}

// HandleCommand handles the task_command tool call.
func (h *Handlers) HandleCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CommandRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.interp.Execute(ctx, input.Line)
	if err != nil {
		return errorResult(err), nil
	}

	out := CommandOutput{
		Command: string(res.Command),
		Message: res.Message,
		Count:   res.Count,
		Changed: res.Changed,
		Saved:   res.Saved,
	}
	if res.Task != nil {
		v := newTaskView(*res.Task, res.Number)
		out.Task = &v
	}
	if res.StorageErr != nil {
		out.StorageError = res.StorageErr.Error()
	}
	return successResult(out)
}

// HandleList handles the task_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tasks := h.interp.List().All()
	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = newTaskView(t, i+1)
	}
	return successResult(ListOutput{Tasks: views, Count: len(views)})
}

// HandleReport handles the task_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.Report(h.interp.List().All(), ops.ReportInput{
		Format: ops.ReportFormat(input.Format),
		Title:  input.Title,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the task_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.Export(ctx, h.interp.List().All(), h.cfg, ops.ExportInput{Path: input.Path})
	if err != nil {
		return h.failure("export", err), nil
	}
	return successResult(result)
}

// HandleImport handles the task_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.Import(ctx, h.interp.List(), h.saver, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return h.failure("import", err), nil
	}
	return successResult(result)
}

// failure logs non-validation errors before converting them.
func (h *Handlers) failure(op string, err error) *mcp.CallToolResult {
	if tErr, ok := errors.As(err); !ok || tErr.Kind != errors.KindValidation {
		h.logger.Warn(op+" failed", "error", err)
	}
	return errorResult(err)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"kind":    tErr.Kind,
			"message": tErr.Message,
		}
		// Internal details can carry file paths or driver errors.
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"kind":    errors.KindInternal,
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
