package interp

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/task"
)

const (
	byMarker   = "/by"
	fromMarker = "/from"
	toMarker   = "/to"
)

// tokenize splits a raw line into a lowercased command word and the
// trimmed remainder.
func tokenize(line string) (word, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:i]), strings.TrimSpace(line[i:])
}

// parseIndex validates a 1-based task number argument against size and
// returns the 0-based index.
func parseIndex(command, rest string, size int) (int, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, errors.NewMissingIndex(command)
	}
	n, err := strconv.Atoi(fields[0])
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return 0, errors.NewNumberOutOfRange(fields[0], size)
	}
	if err != nil {
		return 0, errors.NewNonNumericIndex(fields[0])
	}
	if n < 1 || n > size {
		return 0, errors.NewIndexOutOfRange(n, size)
	}
	return n - 1, nil
}

// parseDeadline splits "<description> /by <date>" on the first /by.
func parseDeadline(rest string, strict bool) (task.Task, error) {
	if rest == "" {
		return task.Task{}, errors.NewEmptyDescription(task.KindDeadline.String())
	}

	description, by, found := strings.Cut(rest, byMarker)
	description = strings.TrimSpace(description)
	by = strings.TrimSpace(by)
	if description == "" {
		return task.Task{}, errors.NewEmptyDescription(task.KindDeadline.String())
	}
	if !found || by == "" {
		return task.Task{}, errors.NewMissingDate()
	}

	if !strict {
		return task.NewDeadline(description, by), nil
	}
	due, err := time.Parse(task.DateLayout, by)
	if err != nil {
		return task.Task{}, errors.NewBadDateFormat(by, task.DatePattern, errors.KindValidation)
	}
	return task.NewTimedDeadline(description, due), nil
}

// parseEvent splits "<description> /from <start> /to <end>" into three
// non-empty segments. /from must come before /to.
func parseEvent(rest string) (task.Task, error) {
	if rest == "" {
		return task.Task{}, errors.NewEmptyDescription(task.KindEvent.String())
	}

	fromAt := strings.Index(rest, fromMarker)
	toAt := strings.Index(rest, toMarker)
	if fromAt < 0 || toAt < 0 {
		return task.Task{}, errors.NewMissingTimeRange()
	}
	if toAt < fromAt {
		return task.Task{}, errors.NewMarkersOutOfOrder()
	}

	description := strings.TrimSpace(rest[:fromAt])
	from := strings.TrimSpace(rest[fromAt+len(fromMarker) : toAt])
	to := strings.TrimSpace(rest[toAt+len(toMarker):])
	if description == "" {
		return task.Task{}, errors.NewEmptyDescription(task.KindEvent.String())
	}
	if from == "" || to == "" {
		return task.Task{}, errors.NewMissingTimeRange()
	}
	return task.NewEvent(description, from, to), nil
}
