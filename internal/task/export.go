package task

import (
	"fmt"
	"strings"
	"time"
)

// ExportRecord represents a task record in JSONL export format.
// It is used for parsing export files during import.
type ExportRecord struct {
	// Header detection field - true only for header line
	TallyExport bool `json:"_tally_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportID      string `json:"export_id,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Task fields
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Done        bool   `json:"done,omitempty"`
	By          string `json:"by,omitempty"`
	Due         string `json:"due,omitempty"` // DateLayout
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
}

// ToExportRecord converts a Task to its export representation.
func ToExportRecord(t Task) ExportRecord {
	r := ExportRecord{
		Type:        t.Kind.String(),
		Description: t.Description,
		Done:        t.Done,
	}
	switch t.Kind {
	case KindDeadline:
		if t.Timed {
			r.Due = t.Due.Format(DateLayout)
		} else {
			r.By = t.By
		}
	case KindEvent:
		r.From = t.From
		r.To = t.To
	}
	return r
}

// ToTask converts an ExportRecord back to a Task. Text fields are trimmed
// the same way command input is.
func (r *ExportRecord) ToTask() (Task, error) {
	description := strings.TrimSpace(r.Description)

	var t Task
	switch r.Type {
	case "todo":
		t = NewTodo(description)
	case "deadline":
		if r.Due != "" {
			due, err := time.Parse(DateLayout, strings.TrimSpace(r.Due))
			if err != nil {
				return Task{}, fmt.Errorf("invalid due %q: expected %s", r.Due, DatePattern)
			}
			t = NewTimedDeadline(description, due)
		} else {
			t = NewDeadline(description, strings.TrimSpace(r.By))
		}
	case "event":
		t = NewEvent(description, strings.TrimSpace(r.From), strings.TrimSpace(r.To))
	default:
		return Task{}, fmt.Errorf("unknown task type %q", r.Type)
	}
	t.Done = r.Done
	return t, nil
}
