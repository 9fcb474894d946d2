// Package interp interprets single command lines against a task list.
//
// The interpreter never touches the file system. After a command changes
// the list it hands the new contents to the injected Saver; a save failure
// is reported on the Result and does not undo the change.
package interp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hpungsan/tally/internal/codec"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/logging"
	"github.com/hpungsan/tally/internal/task"
	"github.com/hpungsan/tally/internal/tasklist"
)

// Command is a recognized command word.
type Command string

const (
	CmdTodo     Command = "todo"
	CmdDeadline Command = "deadline"
	CmdEvent    Command = "event"
	CmdList     Command = "list"
	CmdMark     Command = "mark"
	CmdUnmark   Command = "unmark"
	CmdDelete   Command = "delete"
)

// commandOrder is the accepted set, in the order it is shown to users.
var commandOrder = []Command{CmdTodo, CmdDeadline, CmdEvent, CmdList, CmdMark, CmdUnmark, CmdDelete}

// Commands returns the accepted command words.
func Commands() []string {
	out := make([]string, len(commandOrder))
	for i, c := range commandOrder {
		out[i] = string(c)
	}
	return out
}

// Saver persists the full list after a mutating command.
type Saver interface {
	Save(ctx context.Context, tasks []task.Task) error
}

// Options configures an Interpreter.
type Options struct {
	// StrictDates requires deadline dates in task.DateLayout.
	StrictDates bool

	// MaxTasks caps the list size. Zero means unlimited.
	MaxTasks int

	Logger *slog.Logger
}

// Interpreter executes command lines. It holds a reference to the list,
// never a copy, and is not safe for concurrent use.
type Interpreter struct {
	list   *tasklist.List
	saver  Saver
	opts   Options
	logger *slog.Logger
}

// New creates an Interpreter over list. saver may be nil, in which case
// nothing is persisted.
func New(list *tasklist.List, saver Saver, opts Options) *Interpreter {
	return &Interpreter{
		list:   list,
		saver:  saver,
		opts:   opts,
		logger: logging.Module(opts.Logger, "interp"),
	}
}

// List returns the list the interpreter operates on.
func (in *Interpreter) List() *tasklist.List {
	return in.list
}

// Execute runs one command line. Validation failures are returned as a
// *errors.TallyError and leave the list unchanged. A successful mutation
// that could not be saved returns a Result with StorageErr set.
func (in *Interpreter) Execute(ctx context.Context, line string) (*Result, error) {
	start := time.Now()
	line = strings.TrimRight(line, "\r\n")
	word, rest := tokenize(line)

	var (
		res *Result
		err error
	)
	if strings.ContainsAny(line, "\r\n") {
		err = errors.NewInvalidInput("command", "must be a single line")
	} else {
		res, err = in.dispatch(ctx, Command(word), rest)
	}

	attrs := []any{"command", word, "duration", time.Since(start)}
	if err != nil {
		if tErr, ok := errors.As(err); ok {
			attrs = append(attrs, "code", tErr.Code)
		}
		in.logger.Debug("command rejected", attrs...)
		return nil, err
	}
	in.logger.Debug("command executed", append(attrs, "size", in.list.Len(), "saved", res.Saved)...)
	return res, nil
}

func (in *Interpreter) dispatch(ctx context.Context, cmd Command, rest string) (*Result, error) {
	switch cmd {
	case CmdList:
		return in.listTasks(), nil
	case CmdTodo, CmdDeadline, CmdEvent:
		return in.addTask(ctx, cmd, rest)
	case CmdMark:
		return in.setDone(ctx, cmd, rest, true)
	case CmdUnmark:
		return in.setDone(ctx, cmd, rest, false)
	case CmdDelete:
		return in.deleteTask(ctx, rest)
	default:
		return nil, errors.NewUnknownCommand(string(cmd), Commands())
	}
}

func (in *Interpreter) listTasks() *Result {
	tasks := in.list.All()
	return &Result{
		Command: CmdList,
		Message: renderList(tasks),
		Tasks:   tasks,
		Count:   len(tasks),
		Empty:   len(tasks) == 0,
	}
}

func (in *Interpreter) addTask(ctx context.Context, cmd Command, rest string) (*Result, error) {
	// Capacity is checked before any type-specific validation.
	if in.opts.MaxTasks > 0 && in.list.Len() >= in.opts.MaxTasks {
		return nil, errors.NewCapacityExceeded(in.opts.MaxTasks)
	}

	var (
		t   task.Task
		err error
	)
	switch cmd {
	case CmdTodo:
		if rest == "" {
			return nil, errors.NewEmptyDescription(task.KindTodo.String())
		}
		t = task.NewTodo(rest)
	case CmdDeadline:
		t, err = parseDeadline(rest, in.opts.StrictDates)
	case CmdEvent:
		t, err = parseEvent(rest)
	}
	if err != nil {
		return nil, err
	}
	if err := codec.Check(t); err != nil {
		return nil, err
	}

	in.list.Add(t)
	res := &Result{
		Command: cmd,
		Message: renderAdded(t, in.list.Len()),
		Task:    &t,
		Count:   in.list.Len(),
		Changed: true,
	}
	in.persist(ctx, res)
	return res, nil
}

func (in *Interpreter) setDone(ctx context.Context, cmd Command, rest string, done bool) (*Result, error) {
	idx, err := parseIndex(string(cmd), rest, in.list.Len())
	if err != nil {
		return nil, err
	}

	var (
		t       task.Task
		changed bool
	)
	if done {
		t, changed, err = in.list.MarkDone(idx)
	} else {
		t, changed, err = in.list.MarkNotDone(idx)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Command: cmd,
		Message: renderMarked(t, idx+1, changed),
		Task:    &t,
		Number:  idx + 1,
		Count:   in.list.Len(),
		Changed: changed,
	}
	if changed {
		in.persist(ctx, res)
	}
	return res, nil
}

func (in *Interpreter) deleteTask(ctx context.Context, rest string) (*Result, error) {
	idx, err := parseIndex(string(CmdDelete), rest, in.list.Len())
	if err != nil {
		return nil, err
	}
	removed, err := in.list.RemoveAt(idx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Command: CmdDelete,
		Message: renderRemoved(removed, in.list.Len()),
		Task:    &removed,
		Number:  idx + 1,
		Count:   in.list.Len(),
		Changed: true,
	}
	in.persist(ctx, res)
	return res, nil
}

// persist saves the list. Failures are recorded on res, never retried.
func (in *Interpreter) persist(ctx context.Context, res *Result) {
	if in.saver == nil {
		return
	}
	if err := in.saver.Save(ctx, in.list.All()); err != nil {
		if _, ok := errors.As(err); !ok {
			err = errors.NewStorage("save", err)
		}
		res.StorageErr = err
		in.logger.Warn("save failed", "command", res.Command, "error", err)
		return
	}
	res.Saved = true
}
