// Package codec converts tasks to and from their one-line storage encoding:
//
//	[T][ ] Buy milk
//	[D][X] Submit report (by: 2024-12-01 15:00)
//	[E][ ] Trip (from: Mon 2pm, to: 4pm)
//
// This is the only place the persisted format is defined.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/task"
)

const (
	byMarker   = " (by: "
	fromMarker = " (from: "
	toMarker   = " to: "

	// prefixLen covers "[T][X] ".
	prefixLen = 7
)

// Encode returns the one-line encoding of t. It never fails; field values
// are validated before a Task is created.
func Encode(t task.Task) string {
	mark := " "
	if t.Done {
		mark = "X"
	}
	switch t.Kind {
	case task.KindDeadline:
		return fmt.Sprintf("[D][%s] %s%s%s)", mark, t.Description, byMarker, t.DueText())
	case task.KindEvent:
		return fmt.Sprintf("[E][%s] %s%s%s,%s%s)", mark, t.Description, fromMarker, t.From, toMarker, t.To)
	default:
		return fmt.Sprintf("[T][%s] %s", mark, t.Description)
	}
}

// EncodeAll encodes tasks in order, one line per task.
func EncodeAll(tasks []task.Task) []string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, Encode(t))
	}
	return lines
}

// Check reports whether t can be stored as one line and read back
// unchanged. Field values must not contain line breaks, and a deadline's
// due text or an event's times must not contain the markers that
// delimit them (" (by: ", " (from: ", " to: ").
func Check(t task.Task) error {
	fields := []struct{ name, value string }{
		{"description", t.Description},
		{"by", t.By},
		{"from", t.From},
		{"to", t.To},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.value, "\r\n") {
			return errors.NewInvalidInput(f.name, "must not contain a line break")
		}
		if strings.TrimSpace(f.value) != f.value {
			return errors.NewInvalidInput(f.name, "must not have leading or trailing spaces")
		}
	}
	if t.Description == "" {
		return errors.NewEmptyDescription(t.Kind.String())
	}

	d := Decoder{StrictDates: t.Kind == task.KindDeadline && t.Timed}
	got, err := d.Decode(Encode(t))
	if err == nil && got.Equal(t) {
		return nil
	}
	switch t.Kind {
	case task.KindDeadline:
		return errors.NewInvalidInput("by", fmt.Sprintf("must not contain %q", strings.TrimSpace(byMarker)))
	case task.KindEvent:
		return errors.NewInvalidInput("from/to", fmt.Sprintf("must not contain %q or %q",
			strings.TrimSpace(fromMarker), strings.TrimSpace(toMarker)))
	default:
		return errors.NewUnrecognizedFormat(Encode(t))
	}
}

// Decoder parses encoded lines back into tasks.
type Decoder struct {
	// StrictDates requires deadline due values to match task.DateLayout.
	// A mismatch fails the decode with BAD_DATE_FORMAT. When false, due
	// values are kept as opaque text. Event times are always opaque.
	StrictDates bool
}

// Decode parses a single encoded line.
func (d Decoder) Decode(line string) (task.Task, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < prefixLen || line[0] != '[' || line[2] != ']' || line[3] != '[' || line[5] != ']' || line[6] != ' ' {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}

	var done bool
	switch line[4] {
	case 'X':
		done = true
	case ' ':
	default:
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}

	rest := line[prefixLen:]
	var (
		t   task.Task
		err error
	)
	switch line[1] {
	case 'T':
		t, err = decodeTodo(line, rest)
	case 'D':
		t, err = d.decodeDeadline(line, rest)
	case 'E':
		t, err = decodeEvent(line, rest)
	default:
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}
	if err != nil {
		return task.Task{}, err
	}

	t.Done = done
	return t, nil
}

// DecodeAll parses lines in order. Blank lines are ignored. The first
// malformed line aborts the whole decode; the error carries its 1-based
// line number so the file can be repaired by hand.
func (d Decoder) DecodeAll(lines []string) ([]task.Task, error) {
	tasks := make([]task.Task, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := d.Decode(line)
		if err != nil {
			return nil, errors.AtLine(err, i+1)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func decodeTodo(line, rest string) (task.Task, error) {
	description := strings.TrimSpace(rest)
	if description == "" {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}
	return task.NewTodo(description), nil
}

func (d Decoder) decodeDeadline(line, rest string) (task.Task, error) {
	if !strings.HasSuffix(rest, ")") {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}
	i := strings.LastIndex(rest, byMarker)
	if i < 0 {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}

	description := strings.TrimSpace(rest[:i])
	due := strings.TrimSpace(rest[i+len(byMarker) : len(rest)-1])
	if description == "" || due == "" {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}

	if !d.StrictDates {
		return task.NewDeadline(description, due), nil
	}
	at, err := time.Parse(task.DateLayout, due)
	if err != nil {
		return task.Task{}, errors.NewBadDateFormat(due, task.DatePattern, errors.KindFormat)
	}
	return task.NewTimedDeadline(description, at), nil
}

func decodeEvent(line, rest string) (task.Task, error) {
	if !strings.HasSuffix(rest, ")") {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}
	i := strings.LastIndex(rest, fromMarker)
	if i < 0 {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}
	inner := rest[i+len(fromMarker) : len(rest)-1]
	j := strings.LastIndex(inner, toMarker)
	if j < 0 {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}

	description := strings.TrimSpace(rest[:i])
	// Only the separator comma is dropped; commas inside the times survive.
	from := strings.TrimSpace(strings.TrimSuffix(inner[:j], ","))
	to := strings.TrimSpace(inner[j+len(toMarker):])
	if description == "" || from == "" || to == "" {
		return task.Task{}, errors.NewUnrecognizedFormat(line)
	}
	return task.NewEvent(description, from, to), nil
}
