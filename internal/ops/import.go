package ops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hpungsan/tally/internal/codec"
	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/task"
	"github.com/hpungsan/tally/internal/tasklist"
)

// ImportMode controls how imported tasks combine with the current list.
type ImportMode string

const (
	ImportModeAppend  ImportMode = "append"  // add after existing tasks
	ImportModeReplace ImportMode = "replace" // discard existing tasks
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: append
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Count    int           `json:"count"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes one rejected line of an import file.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import reads a JSONL export and applies it to list. The import is all or
// nothing: if any line is rejected, the list is untouched and the rejected
// lines are returned in ImportOutput.Errors. Otherwise the new list is saved
// first and applied only after the save succeeds.
func Import(ctx context.Context, list *tasklist.List, saver Saver, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeAppend
	}
	if input.Mode != ImportModeAppend && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: append, replace")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	strict := cfg == nil || cfg.StrictDates()
	imported, importErrors, err := parseExportFile(file, strict)
	if err != nil {
		return nil, err
	}
	if len(importErrors) > 0 {
		return &ImportOutput{Count: list.Len(), Errors: importErrors}, nil
	}

	next := imported
	if input.Mode == ImportModeAppend {
		next = append(list.All(), imported...)
	}
	if cfg != nil && cfg.MaxTasks > 0 && len(next) > cfg.MaxTasks {
		return nil, errors.NewCapacityExceeded(cfg.MaxTasks)
	}

	if saver != nil {
		if err := saver.Save(ctx, next); err != nil {
			return nil, err
		}
	}
	list.Replace(next)

	return &ImportOutput{
		Imported: len(imported),
		Count:    list.Len(),
	}, nil
}

// parseExportFile reads the header and every task record. Line problems are
// collected; only a missing or foreign header fails the whole file.
func parseExportFile(file *os.File, strict bool) ([]task.Task, []ImportError, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		tasks      []task.Task
		errs       []ImportError
		lineNum    int
		seenHeader bool
	)
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if !seenHeader {
			if err := checkHeader(line); err != nil {
				return nil, nil, err
			}
			seenHeader = true
			continue
		}

		t, ie := parseRecord(line, strict)
		if ie != nil {
			ie.Line = lineNum
			errs = append(errs, *ie)
			continue
		}
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}
	if !seenHeader && len(errs) == 0 {
		return nil, nil, errors.NewInvalidRequest("import file is empty")
	}
	return tasks, errs, nil
}

func checkHeader(line []byte) error {
	var header task.ExportRecord
	if err := json.Unmarshal(line, &header); err != nil || !header.TallyExport {
		return errors.NewInvalidRequest("not a tally export: first line must be the export header")
	}
	if header.SchemaVersion != ExportSchemaVersion {
		return errors.NewInvalidRequest(fmt.Sprintf("unsupported export schema version %q (want %s)",
			header.SchemaVersion, ExportSchemaVersion))
	}
	return nil
}

// parseRecord decodes one task record. With strict dates, a text deadline
// must still parse as a date so the saved list can be loaded again.
func parseRecord(line []byte, strict bool) (task.Task, *ImportError) {
	var raw any
	if err := json.Unmarshal(line, &raw); err != nil {
		return task.Task{}, &ImportError{Code: "PARSE_ERROR", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := validateRecord(raw); err != nil {
		return task.Task{}, &ImportError{Code: "INVALID_RECORD", Message: err.Error()}
	}

	var record task.ExportRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return task.Task{}, &ImportError{Code: "PARSE_ERROR", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if strict && record.Type == task.KindDeadline.String() && record.Due == "" {
		record.By = strings.TrimSpace(record.By)
		if _, err := time.Parse(task.DateLayout, record.By); err != nil {
			return task.Task{}, &ImportError{
				Code:    string(errors.ErrBadDateFormat),
				Message: fmt.Sprintf("invalid date %q: expected format %s", record.By, task.DatePattern),
			}
		}
		record.Due, record.By = record.By, ""
	}
	t, err := record.ToTask()
	if err != nil {
		return task.Task{}, &ImportError{Code: "INVALID_RECORD", Message: err.Error()}
	}
	if err := codec.Check(t); err != nil {
		return task.Task{}, &ImportError{Code: "INVALID_RECORD", Message: err.Error()}
	}
	return t, nil
}
