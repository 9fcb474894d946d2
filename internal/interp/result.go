package interp

import (
	"fmt"
	"strings"

	"github.com/hpungsan/tally/internal/task"
)

// Result is the outcome of a successful command.
type Result struct {
	Command Command

	// Message is the rendered, human-readable response.
	Message string

	// Task is the task the command created, changed or removed.
	Task *task.Task

	// Tasks is the list snapshot for CmdList.
	Tasks []task.Task

	// Number is the 1-based task number addressed by mark, unmark or delete.
	Number int

	// Count is the list size after the command.
	Count int

	// Empty is set when CmdList found no tasks.
	Empty bool

	// Changed reports whether the list was modified. For mark and unmark
	// it is false when the task was already in the requested state.
	Changed bool

	// Saved reports whether the change reached the Saver.
	Saved bool

	// StorageErr is a non-fatal save failure. The in-memory change stands.
	StorageErr error
}

func renderList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "Your task list is empty. Add a task to get started."
	}
	var b strings.Builder
	b.WriteString("Here are the tasks in your list:")
	for i, t := range tasks {
		fmt.Fprintf(&b, "\n%d. %s", i+1, t)
	}
	return b.String()
}

func renderAdded(t task.Task, count int) string {
	return fmt.Sprintf("Added %s: %s\n%s", t.Kind, t, CountLine(count))
}

func renderMarked(t task.Task, number int, changed bool) string {
	switch {
	case changed && t.Done:
		return fmt.Sprintf("Marked task %d as done: %s", number, t)
	case changed:
		return fmt.Sprintf("Marked task %d as not done: %s", number, t)
	case t.Done:
		return fmt.Sprintf("Task %d is already done: %s", number, t)
	default:
		return fmt.Sprintf("Task %d is already not done: %s", number, t)
	}
}

func renderRemoved(t task.Task, count int) string {
	return fmt.Sprintf("Removed: %s\n%s", t, CountLine(count))
}

// CountLine renders the list size, e.g. "Now you have 1 task in the list."
func CountLine(count int) string {
	noun := "tasks"
	if count == 1 {
		noun = "task"
	}
	return fmt.Sprintf("Now you have %d %s in the list.", count, noun)
}
