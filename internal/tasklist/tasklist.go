// Package tasklist holds the ordered, mutable collection of tasks.
//
// Indices are 0-based here. Position is the only address a task has:
// removing an element shifts every later element down by one.
package tasklist

import (
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/task"
)

// List is an ordered sequence of tasks in insertion order.
// It is not safe for concurrent use.
type List struct {
	tasks []task.Task
}

// New creates a list holding tasks in the given order.
func New(tasks ...task.Task) *List {
	l := &List{tasks: make([]task.Task, 0, len(tasks))}
	l.tasks = append(l.tasks, tasks...)
	return l
}

// Add appends t.
func (l *List) Add(t task.Task) {
	l.tasks = append(l.tasks, t)
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.tasks)
}

// Get returns a copy of the task at index.
func (l *List) Get(index int) (task.Task, error) {
	if err := l.check(index); err != nil {
		return task.Task{}, err
	}
	return l.tasks[index], nil
}

// RemoveAt removes and returns the task at index.
func (l *List) RemoveAt(index int) (task.Task, error) {
	if err := l.check(index); err != nil {
		return task.Task{}, err
	}
	removed := l.tasks[index]
	l.tasks = append(l.tasks[:index], l.tasks[index+1:]...)
	return removed, nil
}

// MarkDone marks the task at index done. It reports whether the done flag
// actually changed along with the task's state after the call.
func (l *List) MarkDone(index int) (task.Task, bool, error) {
	if err := l.check(index); err != nil {
		return task.Task{}, false, err
	}
	t := &l.tasks[index]
	changed := !t.Done
	t.Mark()
	return *t, changed, nil
}

// MarkNotDone clears the done flag of the task at index. It reports whether
// the flag actually changed.
func (l *List) MarkNotDone(index int) (task.Task, bool, error) {
	if err := l.check(index); err != nil {
		return task.Task{}, false, err
	}
	t := &l.tasks[index]
	changed := t.Done
	t.Unmark()
	return *t, changed, nil
}

// All returns a snapshot of the tasks in order. Mutating the returned
// slice does not affect the list.
func (l *List) All() []task.Task {
	out := make([]task.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Replace discards the current contents and takes tasks in order.
func (l *List) Replace(tasks []task.Task) {
	l.tasks = append(make([]task.Task, 0, len(tasks)), tasks...)
}

// check reports out-of-range indices using 1-based numbers, which is what
// the user typed.
func (l *List) check(index int) error {
	if index < 0 || index >= len(l.tasks) {
		return errors.NewIndexOutOfRange(index+1, len(l.tasks))
	}
	return nil
}
