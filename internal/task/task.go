// Package task defines the tracked task variants and how each one renders.
package task

import (
	"fmt"
	"time"
)

// DateLayout is the fixed date-time form used for parsed deadlines,
// both on input and in the persisted encoding.
const DateLayout = "2006-01-02 15:04"

// DatePattern is DateLayout spelled for humans.
const DatePattern = "YYYY-MM-DD HH:MM"

// Kind identifies the task variant. The set is closed.
type Kind int

const (
	KindTodo Kind = iota
	KindDeadline
	KindEvent
)

// String returns the command word that creates this kind.
func (k Kind) String() string {
	switch k {
	case KindTodo:
		return "todo"
	case KindDeadline:
		return "deadline"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Task is a tagged variant over Todo, Deadline and Event.
// Only the fields belonging to Kind are meaningful.
type Task struct {
	Kind Kind

	// Description is the display text; never empty once created.
	Description string

	// Done is the completion flag.
	Done bool

	// By is the due value of a deadline as entered, used when Timed is false.
	By string

	// Due is the parsed due date-time of a deadline, used when Timed is true.
	Due time.Time

	// Timed reports whether a deadline carries a parsed date-time.
	Timed bool

	// From and To bound an event. Both are opaque text.
	From string
	To   string
}

// NewTodo creates a Todo.
func NewTodo(description string) Task {
	return Task{Kind: KindTodo, Description: description}
}

// NewDeadline creates a Deadline whose due value is kept as opaque text.
func NewDeadline(description, by string) Task {
	return Task{Kind: KindDeadline, Description: description, By: by}
}

// NewTimedDeadline creates a Deadline with a parsed due date-time.
func NewTimedDeadline(description string, due time.Time) Task {
	return Task{Kind: KindDeadline, Description: description, Due: due, Timed: true}
}

// NewEvent creates an Event spanning from..to.
func NewEvent(description, from, to string) Task {
	return Task{Kind: KindEvent, Description: description, From: from, To: to}
}

// Tag returns the one-character type tag.
func (t Task) Tag() string {
	switch t.Kind {
	case KindDeadline:
		return "D"
	case KindEvent:
		return "E"
	default:
		return "T"
	}
}

// StatusIcon returns "X" when done and a single space otherwise.
func (t Task) StatusIcon() string {
	if t.Done {
		return "X"
	}
	return " "
}

// DueText returns the deadline's due value as it is displayed and stored.
func (t Task) DueText() string {
	if t.Timed {
		return t.Due.Format(DateLayout)
	}
	return t.By
}

// Detail returns the variant-specific suffix. It is empty for a Todo.
func (t Task) Detail() string {
	switch t.Kind {
	case KindDeadline:
		return fmt.Sprintf("(by: %s)", t.DueText())
	case KindEvent:
		return fmt.Sprintf("(from: %s, to: %s)", t.From, t.To)
	default:
		return ""
	}
}

// String renders the task as shown to the user, e.g. "[D][ ] Submit report (by: 2024-12-01 15:00)".
func (t Task) String() string {
	s := fmt.Sprintf("[%s][%s] %s", t.Tag(), t.StatusIcon(), t.Description)
	if detail := t.Detail(); detail != "" {
		s += " " + detail
	}
	return s
}

// Mark sets the task done. Calling it twice has the same effect as once.
func (t *Task) Mark() {
	t.Done = true
}

// Unmark sets the task not done.
func (t *Task) Unmark() {
	t.Done = false
}

// Equal reports whether two tasks agree in kind, description, done state
// and every field of their variant.
func (t Task) Equal(other Task) bool {
	if t.Kind != other.Kind || t.Description != other.Description || t.Done != other.Done {
		return false
	}
	switch t.Kind {
	case KindDeadline:
		if t.Timed != other.Timed {
			return false
		}
		if t.Timed {
			return t.Due.Equal(other.Due)
		}
		return t.By == other.By
	case KindEvent:
		return t.From == other.From && t.To == other.To
	default:
		return true
	}
}
