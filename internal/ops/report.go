package ops

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/task"
)

// ReportFormat selects the report rendering.
type ReportFormat string

const (
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Format ReportFormat // default: markdown
	Title  string       // default: "Tasks"
}

// ReportOutput contains the rendered report.
type ReportOutput struct {
	Format  ReportFormat `json:"format"`
	Content string       `json:"content"`
	Total   int          `json:"total"`
	Done    int          `json:"done"`
}

var md = goldmark.New(goldmark.WithExtensions(extension.TaskList))

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
)

// Report renders tasks as a Markdown checklist, numbered as in the list,
// optionally converted to HTML.
func Report(tasks []task.Task, input ReportInput) (*ReportOutput, error) {
	format := input.Format
	if format == "" {
		format = ReportMarkdown
	}
	if format != ReportMarkdown && format != ReportHTML {
		return nil, errors.NewInvalidRequest("format must be one of: markdown, html")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Tasks"
	}

	done := 0
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", mdEscaper.Replace(title))
	if len(tasks) == 0 {
		b.WriteString("_No tasks._\n")
	}
	for i, t := range tasks {
		box := " "
		if t.Done {
			box = "x"
			done++
		}
		fmt.Fprintf(&b, "- [%s] %d. %s", box, i+1, mdEscaper.Replace(t.Description))
		if detail := reportDetail(t); detail != "" {
			fmt.Fprintf(&b, " (%s)", mdEscaper.Replace(detail))
		}
		fmt.Fprintf(&b, " `%s`\n", t.Kind)
	}
	if len(tasks) > 0 {
		fmt.Fprintf(&b, "\n%d of %d done.\n", done, len(tasks))
	}

	out := &ReportOutput{Format: format, Content: b.String(), Total: len(tasks), Done: done}
	if format == ReportHTML {
		var buf bytes.Buffer
		if err := md.Convert([]byte(out.Content), &buf); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("render report: %w", err))
		}
		out.Content = buf.String()
	}
	return out, nil
}

func reportDetail(t task.Task) string {
	switch t.Kind {
	case task.KindDeadline:
		return "by " + t.DueText()
	case task.KindEvent:
		return fmt.Sprintf("from %s to %s", t.From, t.To)
	default:
		return ""
	}
}
